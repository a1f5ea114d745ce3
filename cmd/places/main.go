package main

import (
	"os"

	"github.com/grovetools/places/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
