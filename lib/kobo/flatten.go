package kobo

import "sort"

// Flatten collapses a nested record into a single-level row using
// dotted-path keys: {"a": {"b": 1}} becomes {"a.b": 1}. Arrays are
// left in place as values.
func Flatten(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	flattenInto(out, "", record)
	return out
}

func flattenInto(out map[string]any, prefix string, record map[string]any) {
	for key, value := range record {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = value
	}
}

// FlattenAll flattens every record. Rows need not share key sets; a
// key absent from a row is simply absent (nil on lookup).
func FlattenAll(records []map[string]any) []map[string]any {
	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = Flatten(record)
	}
	return rows
}

// Columns returns the sorted union of keys across all rows.
func Columns(rows []map[string]any) []string {
	set := make(map[string]struct{})
	for _, row := range rows {
		for key := range row {
			set[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for key := range set {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}
