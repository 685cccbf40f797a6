// Package cli implements the stache command line: rendering templates,
// listing search paths and serving configured routes.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-stache/internal/prompt"
	"github.com/goliatone/go-stache/pkg/config"
)

// App carries the collaborators commands run against. Zero values are
// replaced by terminal backed defaults.
type App struct {
	In     io.Reader
	Out    io.Writer
	Logger log.Logger
	Prompt prompt.Driver
	Serve  func(addr string, handler http.Handler) error
}

type globalOptions struct {
	configPath string
	debug      bool
}

func (a *App) defaults() {
	if a.In == nil {
		a.In = os.Stdin
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Logger == nil {
		a.Logger = log.NewLogger()
	}
	if a.Prompt == nil {
		a.Prompt = prompt.NewSurvey()
	}
	if a.Serve == nil {
		a.Serve = listenAndServe
	}
}

// NewRootCommand builds the stache command tree.
func NewRootCommand(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	app.defaults()

	global := &globalOptions{}
	root := &cobra.Command{
		Use:           "stache",
		Short:         "Render Mustache templates with layered default parameters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			app.Logger.EnableDebugLog(global.debug)
		},
	}
	root.PersistentFlags().StringVarP(&global.configPath, "config", "c", "", "Configuration file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&global.debug, "debug", "d", false, "Enable debug logging mode")
	root.SetOut(app.Out)
	root.SetIn(app.In)

	root.AddCommand(
		newRenderCommand(app, global),
		newPathsCommand(app, global),
		newServeCommand(app, global),
	)
	return root
}

// Execute runs the root command against the terminal and exits non-zero on
// failure.
func Execute() {
	app := &App{}
	if err := NewRootCommand(app).Execute(); err != nil {
		app.Logger.Errorf("%s", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file when one is given and appends the
// --path flags ("dir" or "namespace=dir").
func loadConfig(global *globalOptions, paths []string) (config.Config, error) {
	var cfg config.Config
	if strings.TrimSpace(global.configPath) != "" {
		loaded, err := config.Load(global.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	for _, raw := range paths {
		entry, err := parsePathFlag(raw)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Paths = append(cfg.Paths, entry)
	}
	if global.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func parsePathFlag(raw string) (config.PathEntry, error) {
	namespace, dir, ok := strings.Cut(raw, "=")
	if !ok {
		dir, namespace = raw, ""
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return config.PathEntry{}, fmt.Errorf("invalid --path %q: directory is required", raw)
	}
	return config.PathEntry{Namespace: strings.TrimSpace(namespace), Path: dir}, nil
}

func listenAndServe(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
