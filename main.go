package main

import (
	"fmt"
	"os"

	"github.com/sparti-cms/sparti-settings/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
