// Treasury agent - natural-language Solana wallet commands
package main

import (
	"os"

	"github.com/walt-openclaw/treasuryagent/internal/cli"
)

func main() {
	os.Exit(cli.NewApp().Execute(os.Args[1:]))
}
