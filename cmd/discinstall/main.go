package main

import (
	"os"

	"github.com/calaveras/discinstall/cmd/discinstall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
