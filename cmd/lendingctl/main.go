// Package main is lendingctl, a command line driver for the library lending engine.
//
// Every invocation builds a fresh library, seeds it from the configured seed file (or the
// built-in sample catalog) and journals all operations to the configured backend.
package main

import "os"

// version is set via ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
