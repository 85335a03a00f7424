// Package main bootstraps asdbq, a command-line tool for building, converting
// and checking antiSMASH database search queries.
package main

import (
	"log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
