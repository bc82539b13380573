package main

import (
	"os"

	"github.com/casterly-dev/casterly/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
