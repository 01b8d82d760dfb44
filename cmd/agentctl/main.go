// Package main is the entry point for the agentctl operator shell
package main

import (
	"os"

	"go401-gateway/cmd/agentctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
