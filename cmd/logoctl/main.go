// Command logoctl is a command line client for the Logo Objects REST API.
//
// Usage:
//
//	logoctl entities
//	logoctl ops salesOrders
//	logoctl list items --limit 20 --sort CODE --fields CODE,NAME
//	logoctl get items 42
//	logoctl search arps --where taxNr=1234567890 --like title=ACME
//	logoctl call exportNationalizationSlips ApplyADiscount 42 D10
//	logoctl qs --entity salesOrders --where ficheNo=SO-1 --limit 10
//
// Connection settings come from flags, LOGO_* environment variables, a .env
// file in the working directory or a --config file, in that order.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}
