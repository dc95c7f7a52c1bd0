package main

import (
	"github.com/mchmarny/passcheck/pkg/cli"
)

func main() {
	cli.Execute()
}
