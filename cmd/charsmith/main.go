package main

import "charsmith/internal/cli"

func main() {
	cli.Execute()
}
