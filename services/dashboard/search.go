package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"kobodash/lib/kobo"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// MatchMethod selects the string-similarity function used by the
// keyword search. It is a closed enum dispatched through a function
// table, not a string-keyed lookup.
type MatchMethod int

const (
	// whole-string similarity, order and exactness matter
	MatchRatio MatchMethod = iota
	// best matching substring, good for phrases inside longer strings
	MatchPartialRatio
	// sorts words alphabetically before comparing, ignores word order
	MatchTokenSortRatio
	// compares unique word sets, robust to extra words and reordering
	MatchTokenSetRatio
	// blended heuristic across the other methods with case and
	// punctuation normalization
	MatchWRatio
)

var matchMethodNames = map[MatchMethod]string{
	MatchRatio:          "ratio",
	MatchPartialRatio:   "partial",
	MatchTokenSortRatio: "token-sort",
	MatchTokenSetRatio:  "token-set",
	MatchWRatio:         "weighted",
}

func (m MatchMethod) String() string {
	name, ok := matchMethodNames[m]
	if !ok {
		return fmt.Sprintf("MatchMethod(%d)", int(m))
	}
	return name
}

func ParseMatchMethod(s string) (MatchMethod, error) {
	for method, name := range matchMethodNames {
		if name == s {
			return method, nil
		}
	}
	return 0, fmt.Errorf("unknown match method %q (want one of ratio, partial, token-sort, token-set, weighted)", s)
}

var matchFuncs = map[MatchMethod]func(a, b string) int{
	MatchRatio:          func(a, b string) int { return fuzzy.Ratio(a, b) },
	MatchPartialRatio:   func(a, b string) int { return fuzzy.PartialRatio(a, b) },
	MatchTokenSortRatio: func(a, b string) int { return fuzzy.TokenSortRatio(a, b) },
	MatchTokenSetRatio:  func(a, b string) int { return fuzzy.TokenSetRatio(a, b) },
	MatchWRatio:         func(a, b string) int { return fuzzy.WRatio(a, b) },
}

// MatchResult is one form's score against a keyword search.
type MatchResult struct {
	FormName      string
	UID           string
	OwnerUsername string
	MatchCount    int
	MatchedTerms  []string
}

// SearchSchemaTerms scores every schema term of every form against the
// keywords. A term counts as matched the first time any keyword
// reaches the threshold; further keywords are not checked against it,
// so a term is never counted twice. Forms with zero matches are
// omitted. MatchedTerms comes back deduplicated and sorted.
func SearchSchemaTerms(defs []kobo.FormDefinition, owners map[string]string, keywords []string, method MatchMethod, threshold int) []MatchResult {
	score, ok := matchFuncs[method]
	if !ok {
		score = matchFuncs[MatchTokenSetRatio]
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	var results []MatchResult
	for _, def := range defs {
		matched := make(map[string]struct{})

		for _, term := range def.Columns {
			loweredTerm := strings.ToLower(term)
			for _, keyword := range lowered {
				if score(loweredTerm, keyword) >= threshold {
					matched[term] = struct{}{}
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}

		terms := make([]string, 0, len(matched))
		for term := range matched {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		owner, ok := owners[def.UID]
		if !ok || owner == "" {
			owner = "N/A"
		}

		results = append(results, MatchResult{
			FormName:      def.FormName,
			UID:           def.UID,
			OwnerUsername: owner,
			MatchCount:    len(terms),
			MatchedTerms:  terms,
		})
	}
	return results
}
