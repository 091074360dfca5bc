package tenders

import "strings"

const matchAll = "all"

// categorySynonyms widens a requested category to the related procurement
// category terms the feed actually uses. Matching falls back to a direct
// substring check for categories not listed here.
var categorySynonyms = map[string][]string{
	"services": {"services", "consultingservices", "professionalservices"},
	"goods":    {"goods", "supplies"},
	"works":    {"works", "construction"},
}

// Filter returns the releases that pass every active filter. The input slice
// is never mutated; filtering an already filtered set with the same filters
// yields the same set.
func Filter(releases []Release, filters Filters) []Release {
	out := make([]Release, 0, len(releases))
	for _, release := range releases {
		if release.Tender == nil {
			continue
		}
		if !matchesQuery(release, filters.Query) {
			continue
		}
		if !matchesStatus(release.Tender.Status, filters.Status) {
			continue
		}
		if !matchesCategory(release.Tender.MainProcurementCategory, filters.Category) {
			continue
		}
		out = append(out, release)
	}
	return out
}

func matchesQuery(release Release, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	haystacks := []string{
		release.Tender.Title,
		release.Tender.Description,
		release.OCID,
	}
	if release.Buyer != nil {
		haystacks = append(haystacks, release.Buyer.Name)
	}
	if release.Tender.ProcuringEntity != nil {
		haystacks = append(haystacks, release.Tender.ProcuringEntity.Name)
	}

	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), query) {
			return true
		}
	}
	return false
}

func matchesStatus(status, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == matchAll {
		return true
	}
	return strings.Contains(strings.ToLower(status), filter)
}

func matchesCategory(category, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == matchAll {
		return true
	}

	normalized := strings.ToLower(category)
	if synonyms, ok := categorySynonyms[filter]; ok {
		for _, synonym := range synonyms {
			if strings.Contains(normalized, synonym) {
				return true
			}
		}
		return false
	}
	return strings.Contains(normalized, filter)
}
