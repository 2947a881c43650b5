package main

import (
	"os"
	sys "os"
)

func main() {
	defer func() {}()

	if len(os.Args) > 3 {
		sys.Exit(2) // want "avoid using os.Exit in main.main"
	}

	os.Exit(1) // want "avoid using os.Exit in main.main"
}
