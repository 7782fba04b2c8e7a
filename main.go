package main

import "github.com/killallgit/scribe/cmd"

func main() {
	cmd.Execute()
}
