package main

import "github.com/example/room-finder/cmd"

func main() {
	cmd.Execute()
}
