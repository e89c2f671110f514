package kobo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatten(t *testing.T) {
	testCases := []struct {
		record   map[string]any
		expected map[string]any
	}{
		{
			record:   map[string]any{"a": map[string]any{"b": 1, "c": 2}},
			expected: map[string]any{"a.b": 1, "a.c": 2},
		},
		{
			record: map[string]any{
				"id": "s1",
				"group": map[string]any{
					"inner": map[string]any{"leaf": "x"},
					"flat":  true,
				},
			},
			expected: map[string]any{
				"id":                "s1",
				"group.inner.leaf":  "x",
				"group.flat":        true,
			},
		},
		{
			// arrays stay in place as values
			record:   map[string]any{"tags": []any{"a", "b"}},
			expected: map[string]any{"tags": []any{"a", "b"}},
		},
		{
			record:   map[string]any{},
			expected: map[string]any{},
		},
	}

	for _, test := range testCases {
		diff := cmp.Diff(test.expected, Flatten(test.record))
		if diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestColumnsUnionsRowKeys(t *testing.T) {
	rows := []map[string]any{
		{"a": 1, "b": 2},
		{"b": 3, "c": 4},
	}
	diff := cmp.Diff([]string{"a", "b", "c"}, Columns(rows))
	if diff != "" {
		t.Fatal(diff)
	}
}
