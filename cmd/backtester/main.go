package main

import (
	"os"

	"github.com/quantlab/backtester/cmd/backtester/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
