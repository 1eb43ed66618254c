package main

import "github.com/halver/sluice/cmd"

func main() {
	cmd.Execute()
}
