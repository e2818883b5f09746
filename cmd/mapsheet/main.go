package main

import "mapsheet/cmd/mapsheet/cmd"

func main() {
	cmd.Execute()
}
