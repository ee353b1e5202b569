// main is the entry point for the solarcorr CLI.
package main

import (
	"github.com/huangsam/solarcorr/cmd"
	"github.com/huangsam/solarcorr/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("solarcorr failed", err)
	}
}
