package tenders

import "testing"

func TestSortByValueDescendingMissingLast(t *testing.T) {
	releases := []Release{
		release("ocds-low", "Low", "active", "goods", 100),
		{OCID: "ocds-none", Tender: &Tender{Title: "None", Status: "active"}},
		release("ocds-high", "High", "active", "goods", 500),
	}

	Sort(releases, SortByValue)

	if releases[0].OCID != "ocds-high" || releases[1].OCID != "ocds-low" || releases[2].OCID != "ocds-none" {
		t.Fatalf("unexpected value order: %s %s %s", releases[0].OCID, releases[1].OCID, releases[2].OCID)
	}
}

func TestSortByTitleLexicographic(t *testing.T) {
	releases := []Release{
		release("ocds-2", "Zebra crossing", "active", "works", 0),
		release("ocds-1", "airport upgrade", "active", "works", 0),
	}

	Sort(releases, SortByTitle)

	if releases[0].OCID != "ocds-1" {
		t.Fatalf("expected case-insensitive title sort, got %s first", releases[0].OCID)
	}
}

func TestSortByClosingDateDescending(t *testing.T) {
	withClosing := func(ocid, end string) Release {
		return Release{OCID: ocid, Tender: &Tender{TenderPeriod: &Period{EndDate: end}}}
	}
	releases := []Release{
		withClosing("ocds-early", "2026-09-01T12:00:00Z"),
		{OCID: "ocds-none", Tender: &Tender{}},
		withClosing("ocds-late", "2026-10-01T12:00:00Z"),
	}

	Sort(releases, SortByClosingDate)

	if releases[0].OCID != "ocds-late" || releases[2].OCID != "ocds-none" {
		t.Fatalf("unexpected closing date order: %s %s %s", releases[0].OCID, releases[1].OCID, releases[2].OCID)
	}
}

func TestSortDefaultIsDateDescendingAndStable(t *testing.T) {
	releases := []Release{
		{OCID: "ocds-a", Date: "2026-08-01T00:00:00Z", Tender: &Tender{}},
		{OCID: "ocds-b", Date: "2026-08-01T00:00:00Z", Tender: &Tender{}},
		{OCID: "ocds-c", Date: "2026-08-15T00:00:00Z", Tender: &Tender{}},
	}

	Sort(releases, "anything-unknown")

	if releases[0].OCID != "ocds-c" {
		t.Fatalf("expected newest first, got %s", releases[0].OCID)
	}
	// Equal dates keep their relative order.
	if releases[1].OCID != "ocds-a" || releases[2].OCID != "ocds-b" {
		t.Fatalf("sort is not stable: %s %s", releases[1].OCID, releases[2].OCID)
	}
}
