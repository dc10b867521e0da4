// Package main provides the CLI entrypoint for property-mapper.
//
// property-mapper loads Go packages (AST + go/types) and describes how
// their structs map to CQL tables:
//   - Column names, partition keys and clustering columns
//   - Custom codecs requested through metadata
//   - Why each excluded member was left out
//
// It also generates reflection-free descriptors for those structs.
package main

import (
	"os"

	"property-mapper/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
