package main

import "github.com/securepass/securepass/cmd/securepass/cmd"

func main() {
	cmd.Execute()
}
