package main

import "travel-ops/cmd"

func main() {
	cmd.Execute()
}
