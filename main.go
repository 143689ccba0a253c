package main

import "turnkit/cmd"

func main() {
	cmd.Execute()
}
