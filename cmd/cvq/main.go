// Package main is the entry point for the cvq CLI tool.
package main

import (
	"github.com/covquery/cvq/internal/cmd"
)

func main() {
	cmd.Execute()
}
