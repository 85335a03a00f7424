package termerr

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestTermErr(t *testing.T) {
	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, Analyzer, "edits")
}

func TestIsQueryPackage(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"asdb_search/query", true},
		{"vendor/asdb_search/query", true},
		{"asdb_search/search", false},
		{"example.com/query", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isQueryPackage(tt.path); got != tt.expected {
				t.Errorf("isQueryPackage(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
