package main

import "github.com/goliatone/go-stache/internal/cli"

func main() {
	cli.Execute()
}
