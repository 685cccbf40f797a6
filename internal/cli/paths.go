package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stache/pkg/factory"
)

type pathsOptions struct {
	paths     []string
	templates bool
}

func newPathsCommand(app *App, global *globalOptions) *cobra.Command {
	opts := &pathsOptions{}
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "List template search paths in lookup order and scopes holding defaults",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return pathsCmdFn(app, global, opts)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.paths, "path", "p", nil, "Template search path, optionally namespace=dir (repeatable)")
	cmd.Flags().BoolVarP(&opts.templates, "templates", "t", false, "Also list the templates found in the paths")
	return cmd
}

func pathsCmdFn(app *App, global *globalOptions, opts *pathsOptions) error {
	cfg, err := loadConfig(global, opts.paths)
	if err != nil {
		return err
	}
	tpl, err := factory.New(cfg, factory.WithLogger(app.Logger))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAMESPACE\tPATH")
	for _, p := range tpl.Paths() {
		namespace := p.Namespace
		if namespace == "" {
			namespace = "(default)"
		}
		fmt.Fprintf(w, "%s\t%s\n", namespace, p.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if scopes := tpl.Registry().Scopes(); len(scopes) > 0 {
		fmt.Fprintln(app.Out)
		if err := printList(app.Out, "DEFAULTS", scopes); err != nil {
			return err
		}
	}

	if !opts.templates {
		return nil
	}
	names, err := tpl.DefaultResolver().List()
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out)
	return printList(app.Out, "TEMPLATES", names)
}

func printList(out io.Writer, title string, items []string) error {
	if _, err := fmt.Fprintln(out, title); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(out, "  %s\n", item); err != nil {
			return err
		}
	}
	return nil
}
