package main

import (
	"os"

	"github.com/solvekit/uras/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
