package main

import (
	"os"

	"github.com/plimantour/rai-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
