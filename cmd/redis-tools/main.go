package main

import (
	"os"

	"github.com/SiriusScan/redis-tools/internal/cli"
)

func main() {
	os.Exit(cli.NewCLI(os.Stdout, os.Stderr).Run(os.Args))
}
