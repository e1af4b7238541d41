// Package main implements the entry point for the redink API server,
// which batch-grades scanned student essays through OCR and an LLM and
// exposes asynchronous progress tracking to callers.
package main

import (
	"log"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
