package main

import (
	"os"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
