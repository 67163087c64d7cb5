package main

import "github.com/lightcycles/engine/cmd/cycles/commands"

func main() {
	commands.Execute()
}
