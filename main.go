package main

import "rental-sync/cmd"

func main() {
	cmd.Execute()
}
