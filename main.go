package main

import "github.com/KaramelBytes/diamondlens-cli/cmd"

func main() {
	cmd.Execute()
}
