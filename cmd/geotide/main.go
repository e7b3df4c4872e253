// Package main provides the geotide command line tool.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "geotide: %v\n", err)
		os.Exit(1)
	}
}
