package main

import (
	"os"

	"github.com/snstore/snstore/cmd/snstore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
