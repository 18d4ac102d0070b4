package main

import (
	"os"

	"github.com/egapool/klinedl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
