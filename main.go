package main

import "github.com/tranvictor/uns/cmd"

func main() {
	cmd.Execute()
}
