package main

import "github.com/eslsoft/bookdrill/cmd"

func main() {
	cmd.Execute()
}
