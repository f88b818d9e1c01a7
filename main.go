package main

import "driftrun/internal/cli"

func main() {
	cli.Execute()
}
