// termerr reports query tree edits whose errors are dropped.
//
//	go run ./cmd/termerr ./...
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"asdb_search/analysis/termerr"
)

func main() {
	singlechecker.Main(termerr.Analyzer)
}
