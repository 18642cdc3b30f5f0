package main

import "github.com/chriserin/dspec/cmd"

func main() {
	cmd.Execute()
}
