// Package main is the entry point for the ctx CLI tool.
package main

import (
	"os"

	"github.com/hargabyte/ctx/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
