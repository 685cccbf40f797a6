package main

import (
	"os"

	"github.com/goliatone/go-stache/internal/cli"
)

func main() {
	app := &cli.App{}
	cmd := cli.NewServeCommand(app)
	cmd.Use = "stache-server"
	if err := cmd.Execute(); err != nil {
		app.Logger.Errorf("%s", err)
		os.Exit(1)
	}
}
