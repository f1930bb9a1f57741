package main

import (
	"os"

	"github.com/aussiebroadwan/accounts/internal/accounts/cli"
)

func main() {
	os.Exit(cli.Execute())
}
