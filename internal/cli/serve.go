package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-stache/pkg/server"
)

type serveOptions struct {
	addr  string
	paths []string
}

// NewServeCommand builds a standalone serve command carrying its own --config
// and --debug flags.
func NewServeCommand(app *App) *cobra.Command {
	return newServeCommand(app, nil)
}

func newServeCommand(app *App, global *globalOptions) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	app.defaults()

	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured routes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return serveCmdFn(app, global, opts)
		},
	}
	if global == nil {
		global = &globalOptions{}
		cmd.Flags().StringVarP(&global.configPath, "config", "c", "", "Configuration file (YAML or JSON)")
		cmd.Flags().BoolVarP(&global.debug, "debug", "d", false, "Enable debug logging mode")
		cmd.SilenceUsage = true
		cmd.PreRun = func(*cobra.Command, []string) {
			app.Logger.EnableDebugLog(global.debug)
		}
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringArrayVarP(&opts.paths, "path", "p", nil, "Template search path, optionally namespace=dir (repeatable)")
	return cmd
}

func serveCmdFn(app *App, global *globalOptions, opts *serveOptions) error {
	cfg, err := loadConfig(global, opts.paths)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg, server.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	app.Logger.Infof("Serving %d routes on %s", len(cfg.Routes), opts.addr)
	return app.Serve(opts.addr, srv)
}
