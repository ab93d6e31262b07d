package main

import "fmt"

// Version is set at build time via ldflags.
var Version = "dev"

// runVersion prints the version line.
func runVersion(env *Environment) int {
	fmt.Fprintf(env.Stdout, "go-md2enex %s\n", Version)
	return ExitSuccess
}
