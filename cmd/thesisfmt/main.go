package main

import (
	"os"

	"github.com/mfeng-dev/thesisfmt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
