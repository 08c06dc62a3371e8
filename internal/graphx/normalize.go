package graphx

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// normalizeValue maps store-native value kinds onto a closed set of Go
// kinds: int64, float64, string, bool, nil, []any, map[string]any and
// time.Time, recursively through nested structures. Nodes and relationships
// collapse to their property maps.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int64, float64, time.Time:
		return x
	case int:
		return int64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizeValue(item)
		}
		return out
	case dbtype.Node:
		return normalizeValue(x.Props)
	case dbtype.Relationship:
		return normalizeValue(x.Props)
	case dbtype.Date:
		return x.Time()
	case dbtype.LocalDateTime:
		return x.Time()
	default:
		return x
	}
}
