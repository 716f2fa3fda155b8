package main

import (
	"os"

	"github.com/vanerueda/packsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
