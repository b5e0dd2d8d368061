package main

import "github.com/mfsousa/ai-cli/cmd"

func main() {
	cmd.Execute()
}
