// Command brreg-search runs registry searches from the command line and
// writes the results as CSV or JSON.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
