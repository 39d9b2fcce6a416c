package main

import (
	"os"

	"rentalfigs/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
