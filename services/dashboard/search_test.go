package dashboard

import (
	"testing"

	"kobodash/lib/kobo"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSearchSchemaTermsTokenSet(t *testing.T) {
	defs := []kobo.FormDefinition{
		{
			FormName: "Household Census",
			UID:      "a1",
			Columns:  []string{"Household Size", "hh_size", "integer"},
		},
	}
	owners := map[string]string{"a1": "enumerator1"}

	results := SearchSchemaTerms(defs, owners, []string{"household"}, MatchTokenSetRatio, 80)

	expected := []MatchResult{
		{
			FormName:      "Household Census",
			UID:           "a1",
			OwnerUsername: "enumerator1",
			MatchCount:    1,
			MatchedTerms:  []string{"Household Size"},
		},
	}
	diff := cmp.Diff(expected, results)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSearchSchemaTermsIdempotent(t *testing.T) {
	defs := []kobo.FormDefinition{
		{FormName: "Form A", UID: "a1", Columns: []string{"water source", "latrine type", "gps"}},
		{FormName: "Form B", UID: "a2", Columns: []string{"respondent age", "respondent name"}},
	}
	keywords := []string{"water", "respondent"}

	first := SearchSchemaTerms(defs, nil, keywords, MatchPartialRatio, 80)
	second := SearchSchemaTerms(defs, nil, keywords, MatchPartialRatio, 80)

	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSearchSchemaTermsOmitsZeroMatchForms(t *testing.T) {
	defs := []kobo.FormDefinition{
		{FormName: "Form A", UID: "a1", Columns: []string{"water source"}},
		{FormName: "Form B", UID: "a2", Columns: []string{"market price"}},
	}

	results := SearchSchemaTerms(defs, nil, []string{"water"}, MatchTokenSetRatio, 80)
	require.Len(t, results, 1)
	require.Equal(t, "a1", results[0].UID)
	// unknown owners render as the platform's placeholder
	require.Equal(t, "N/A", results[0].OwnerUsername)
}

func TestSearchSchemaTermsCountsTermOnce(t *testing.T) {
	defs := []kobo.FormDefinition{
		{FormName: "Form A", UID: "a1", Columns: []string{"water source"}},
	}

	// the term matches both keywords but must only count once
	results := SearchSchemaTerms(defs, nil, []string{"water", "source"}, MatchPartialRatio, 80)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].MatchCount)
	require.Equal(t, []string{"water source"}, results[0].MatchedTerms)
}

func TestSearchSchemaTermsNoKeywords(t *testing.T) {
	defs := []kobo.FormDefinition{
		{FormName: "Form A", UID: "a1", Columns: []string{"water source"}},
	}
	require.Empty(t, SearchSchemaTerms(defs, nil, nil, MatchRatio, 80))
	require.Empty(t, SearchSchemaTerms(defs, nil, []string{"  ", ""}, MatchRatio, 80))
}

func TestParseMatchMethod(t *testing.T) {
	for _, name := range []string{"ratio", "partial", "token-sort", "token-set", "weighted"} {
		method, err := ParseMatchMethod(name)
		require.NoError(t, err)
		require.Equal(t, name, method.String())
	}

	_, err := ParseMatchMethod("soundex")
	require.Error(t, err)
}
