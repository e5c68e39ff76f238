package main

import "interview-prep-simulator/internal/cli"

func main() {
	cli.Execute()
}
