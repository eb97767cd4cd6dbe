package main

import (
	"fmt"
	"os"

	"github.com/kirillkom/document-qa/cmd/docqa/commands"
)

var version = "dev"

func main() {
	commands.SetVersion(version)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
