package main

import (
	"github.com/andrescamacho/routing-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
