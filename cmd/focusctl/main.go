package main

import (
	"os"

	"focustimer/internal/cli"
	"focustimer/internal/output"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		output.New().Error("%v", err)
		os.Exit(1)
	}
}
