package main

import (
	"os"

	"github.com/NeoKiring/project-management-system/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
