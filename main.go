package main

import "github.com/alde/avdskin/cmd"

func main() {
	cmd.Execute()
}
