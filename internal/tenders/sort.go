package tenders

import (
	"sort"
	"strings"
)

// Sort keys accepted by the pipeline. Anything else falls back to SortByDate.
const (
	SortByTitle       = "title"
	SortByValue       = "value"
	SortByStatus      = "status"
	SortByClosingDate = "closingDate"
	SortByDate        = "date"
)

// Sort orders releases in place with a stable comparator. Missing values
// compare as 0 and missing dates as the empty string; the records themselves
// stay untouched.
func Sort(releases []Release, sortBy string) {
	switch sortBy {
	case SortByTitle:
		sort.SliceStable(releases, func(i, j int) bool {
			return strings.ToLower(title(releases[i])) < strings.ToLower(title(releases[j]))
		})
	case SortByValue:
		sort.SliceStable(releases, func(i, j int) bool {
			return amount(releases[i]) > amount(releases[j])
		})
	case SortByStatus:
		sort.SliceStable(releases, func(i, j int) bool {
			return strings.ToLower(status(releases[i])) < strings.ToLower(status(releases[j]))
		})
	case SortByClosingDate:
		sort.SliceStable(releases, func(i, j int) bool {
			return closingDate(releases[i]) > closingDate(releases[j])
		})
	default:
		sort.SliceStable(releases, func(i, j int) bool {
			return releases[i].Date > releases[j].Date
		})
	}
}

func title(r Release) string {
	if r.Tender == nil {
		return ""
	}
	return r.Tender.Title
}

func status(r Release) string {
	if r.Tender == nil {
		return ""
	}
	return r.Tender.Status
}

func amount(r Release) float64 {
	if r.Tender == nil || r.Tender.Value == nil {
		return 0
	}
	return r.Tender.Value.Amount
}

func closingDate(r Release) string {
	if r.Tender == nil || r.Tender.TenderPeriod == nil {
		return ""
	}
	return r.Tender.TenderPeriod.EndDate
}
