package main

import (
	"os"

	"github.com/teranos/uritemplates/cmd/uritemplate/commands"
)

func main() {
	os.Exit(commands.Execute())
}
