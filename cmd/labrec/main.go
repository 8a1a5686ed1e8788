package main

import (
	"os"

	"github.com/labrec/labrec/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
