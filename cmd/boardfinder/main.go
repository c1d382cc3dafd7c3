package main

import "viamboard/cmd/boardfinder/cmd"

func main() {
	cmd.Execute()
}
