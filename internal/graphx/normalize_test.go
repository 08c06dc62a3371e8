package graphx

import (
	"reflect"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func TestNormalizeValue_Scalars(t *testing.T) {
	now := time.Now()

	cases := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{true, true},
		{"text", "text"},
		{int64(42), int64(42)},
		{42, int64(42)},
		{3.14, 3.14},
		{now, now},
	}

	for _, tc := range cases {
		got := normalizeValue(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("normalizeValue(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeValue_NestedStructures(t *testing.T) {
	in := map[string]any{
		"list": []any{int64(1), "two", []any{3.0}},
		"map":  map[string]any{"inner": int64(7)},
	}
	want := map[string]any{
		"list": []any{int64(1), "two", []any{3.0}},
		"map":  map[string]any{"inner": int64(7)},
	}

	if got := normalizeValue(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("normalizeValue nested = %#v, want %#v", got, want)
	}
}

func TestNormalizeValue_NodeCollapsesToProps(t *testing.T) {
	node := dbtype.Node{
		Props: map[string]any{
			"name":  "example.com",
			"count": int64(3),
		},
	}

	got := normalizeValue(node)
	want := map[string]any{"name": "example.com", "count": int64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalizeValue(node) = %#v, want %#v", got, want)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{URI: "bolt://localhost:7687", Username: "neo4j", Password: "secret"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, cfg := range []Config{
		{Username: "neo4j", Password: "secret"},
		{URI: "bolt://localhost:7687", Password: "secret"},
		{URI: "bolt://localhost:7687", Username: "neo4j"},
	} {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected validation failure for %#v", cfg)
		}
	}
}
