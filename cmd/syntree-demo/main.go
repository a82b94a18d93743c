// Package main provides the syntree-demo CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/salikh-syn/syntree/cmd/syntree-demo/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
