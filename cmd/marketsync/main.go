package main

import (
	"fmt"
	"os"

	"marketsync/cmd/marketsync/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "marketsync:", err)
		os.Exit(1)
	}
}
