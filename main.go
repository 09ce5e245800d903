package main

import (
	"os"

	"github.com/doruk/focusdo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
