package main

import (
	"os"

	"github.com/cscx-ai/meetopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
