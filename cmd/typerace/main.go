package main

import "github.com/strrl/typerace/cmd/typerace/commands"

func main() {
	commands.Execute()
}
