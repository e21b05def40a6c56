package cmd

import (
	"reflect"
	"testing"
)

func TestNormalizeTables(t *testing.T) {
	cases := []struct {
		name   string
		input  []string
		expect []string
	}{
		{"empty", nil, nil},
		{"trims and lowercases", []string{"  Tests ", "QUESTIONS"}, []string{"tests", "questions"}},
		{"drops blank entries", []string{" ", ""}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeTables(tc.input)
			if !reflect.DeepEqual(got, tc.expect) {
				t.Errorf("normalizeTables(%v) = %v, want %v", tc.input, got, tc.expect)
			}
		})
	}
}

func TestSelectTablesKeepsCanonicalOrder(t *testing.T) {
	got := selectTables([]string{"questions", "idea_coverages", "unknown_table"})
	expect := []string{"idea_coverages", "questions"}
	if !reflect.DeepEqual(got, expect) {
		t.Errorf("selectTables = %v, want %v", got, expect)
	}
}

func TestSelectTablesDefaultsToAll(t *testing.T) {
	got := selectTables(nil)
	if len(got) != 5 {
		t.Fatalf("expected all 5 tables, got %v", got)
	}
}
