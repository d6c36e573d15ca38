package main

import (
	"eld-hos-service/internal/cli"
	"os"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
