// Package main provides the kargo CLI entry point.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
