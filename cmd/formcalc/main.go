package main

import (
	"os"

	"github.com/a3tai/mcp-formcalc/cmd/formcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
