package dashboard

import (
	"slices"
	"strings"
	"time"

	"kobodash/lib/kobo"
)

// Criteria is an AND of independent predicates over asset rows. A zero
// Criteria passes every row through unchanged.
//
// Most set filters treat an empty selection as "no restriction". The
// status filter is deliberately different: when StatusFilterActive is
// set and Statuses is empty, the user has explicitly cleared the
// selection and the result is empty. Do not unify the two behaviors.
type Criteria struct {
	NameKeywords []string
	Countries    []string

	Statuses           []string
	StatusFilterActive bool

	Sectors             []string
	OperationalPurposes []string
	CollectsPII         []string
	DescriptionKeywords []string

	// date portion of DateCreated, inclusive on both ends; a zero
	// bound is open
	CreatedFrom time.Time
	CreatedTo   time.Time

	MinSubmissions int
}

// DedupeAssets drops rows sharing a uid, keeping the first occurrence.
// First-wins means a uid loaded from several project views keeps the
// row of the view listed first.
func DedupeAssets(assets []kobo.Asset) []kobo.Asset {
	seen := make(map[string]struct{}, len(assets))
	out := make([]kobo.Asset, 0, len(assets))
	for _, asset := range assets {
		if _, dup := seen[asset.UID]; dup {
			continue
		}
		seen[asset.UID] = struct{}{}
		out = append(out, asset)
	}
	return out
}

// ApplyFilters evaluates every active predicate against every row,
// preserving input order. The input is expected to be deduplicated by
// uid already.
func ApplyFilters(assets []kobo.Asset, c Criteria) []kobo.Asset {
	out := make([]kobo.Asset, 0, len(assets))
	for _, asset := range assets {
		if matchesAll(asset, c) {
			out = append(out, asset)
		}
	}
	return out
}

func matchesAll(a kobo.Asset, c Criteria) bool {
	if !matchesDateRange(a, c.CreatedFrom, c.CreatedTo) {
		return false
	}
	if len(c.NameKeywords) > 0 && !containsAnyFold(a.Name, c.NameKeywords) {
		return false
	}
	if len(c.Countries) > 0 && !slices.Contains(c.Countries, a.CountryLabel) {
		return false
	}

	// an active but empty status selection is an explicit opt-out
	if c.StatusFilterActive && len(c.Statuses) == 0 {
		return false
	}
	if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, string(a.Status)) {
		return false
	}

	if len(c.Sectors) > 0 && !slices.Contains(c.Sectors, a.SectorDisplay()) {
		return false
	}
	if len(c.OperationalPurposes) > 0 && !slices.Contains(c.OperationalPurposes, kobo.DisplayString(a.OperationalPurpose)) {
		return false
	}
	if len(c.CollectsPII) > 0 && !slices.Contains(c.CollectsPII, kobo.DisplayString(a.CollectsPII)) {
		return false
	}
	if len(c.DescriptionKeywords) > 0 && !containsAnyFold(a.Description, c.DescriptionKeywords) {
		return false
	}

	return a.SubmissionCount >= c.MinSubmissions
}

// rows without a creation date fail an active date-range filter
func matchesDateRange(a kobo.Asset, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if a.DateCreated == nil {
		return false
	}
	created := dateOnly(*a.DateCreated)
	if !from.IsZero() && created.Before(dateOnly(from)) {
		return false
	}
	if !to.IsZero() && created.After(dateOnly(to)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// case-insensitive substring match against any keyword
func containsAnyFold(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
