package main

import "github.com/ncsh/ncsh/cmd"

func main() {
	cmd.Execute()
}
