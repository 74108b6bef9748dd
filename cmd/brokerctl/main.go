package main

import "freight-broker-be/internal/cli"

func main() {
	cli.Execute()
}
