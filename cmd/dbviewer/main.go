package main

import (
	"os"

	"dbviewer/cmd/dbviewer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
