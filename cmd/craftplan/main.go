package main

import "github.com/andrescamacho/craftplan-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
