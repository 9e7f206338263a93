package main

import (
	"os"

	"github.com/azrogers/mapzk/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
