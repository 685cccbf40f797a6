package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-stache/internal/prompt"
	"github.com/goliatone/go-stache/pkg/config"
	"github.com/goliatone/go-stache/pkg/render/template/mustachetpl"
	"github.com/goliatone/go-stache/pkg/server"
)

type renderOptions struct {
	paths       []string
	dataPath    string
	sets        []string
	output      string
	interactive bool
}

func newRenderCommand(app *App, global *globalOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Render a template to stdout or a file",
		Long: `Render a template by name ("page", "blog::post") using the configured
search paths and default parameters. Data is read from --data (JSON or YAML,
"-" for stdin) and individual --set key=value pairs, which win.

Templates can link to configured routes with the uri section:

  {{#uri}}{"name": "user", "options": {"user": "{{user}}"}}{{/uri}}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return renderCmdFn(cmd.Context(), app, global, opts, name)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.paths, "path", "p", nil, "Template search path, optionally namespace=dir (repeatable)")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "Render data file (JSON or YAML), - for stdin")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Render data value as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the template and data file")
	return cmd
}

func renderCmdFn(ctx context.Context, app *App, global *globalOptions, opts *renderOptions, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(global, opts.paths)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg, server.WithLogger(app.Logger))
	if err != nil {
		return err
	}
	tpl := srv.Renderer()

	if strings.TrimSpace(name) == "" {
		if !opts.interactive {
			return errors.New("render: template name is required (or use --interactive)")
		}
		name, err = chooseTemplate(ctx, app.Prompt, tpl)
		if err != nil {
			return err
		}
	}

	if opts.interactive && opts.dataPath == "" {
		opts.dataPath, err = app.Prompt.Input(ctx, prompt.InputConfig{
			Message: "Render data file (leave blank for none)",
			Validator: func(value string) error {
				if value == "" {
					return nil
				}
				_, err := os.Stat(value)
				return err
			},
		})
		if err != nil {
			return err
		}
	}

	data, err := readData(app.In, opts.dataPath, opts.sets)
	if err != nil {
		return err
	}

	out, err := tpl.Render(name, data)
	if err != nil {
		return err
	}
	return writeOutput(app.Out, app.Logger, opts.output, out)
}

func chooseTemplate(ctx context.Context, driver prompt.Driver, tpl *mustachetpl.Template) (string, error) {
	names, err := tpl.DefaultResolver().List()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errors.New("render: no templates found in the configured paths")
	}
	idx, err := driver.Select(ctx, prompt.SelectConfig{
		Message:  "Template",
		Options:  names,
		PageSize: 15,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(names) {
		return "", fmt.Errorf("render: invalid template selection %d", idx)
	}
	return names[idx], nil
}

func readData(in io.Reader, path string, sets []string) (map[string]any, error) {
	data := map[string]any{}
	switch strings.TrimSpace(path) {
	case "":
	case "-":
		raw, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("render: read stdin: %w", err)
		}
		if data, err = config.DecodeData(raw); err != nil {
			return nil, err
		}
	default:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("render: read data: %w", err)
		}
		if data, err = config.DecodeData(raw); err != nil {
			return nil, err
		}
	}

	for _, pair := range sets {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("render: invalid --set %q, expected key=value", pair)
		}
		data[key] = value
	}
	return data, nil
}

func writeOutput(out io.Writer, logger log.Logger, path, content string) error {
	if path == "" {
		_, err := io.WriteString(out, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("render: write output: %w", err)
	}
	logger.Infof("Rendered output written to %s", path)
	return nil
}
