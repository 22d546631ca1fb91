// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

// Command matchpointctl operates a Matchpoint deployment from the shell.
//
// It opens the same configuration, database and vector store as the server:
//
//	matchpointctl enqueue user u1 --priority 5
//	matchpointctl process --batch 50 --dry-run
//	matchpointctl status -o yaml
//	matchpointctl encode match m1
//	matchpointctl rank u1 --limit 5 --min 0.4
//
// DuckDB allows a single writer process. Run it against a stopped server or
// a copy of the database file, or use the HTTP API instead.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
