package main

import (
	"os"

	"github.com/spigell/careerpath/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
