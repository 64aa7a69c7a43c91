package main

import "benchd/internal/cli"

func main() {
	cli.Execute()
}
