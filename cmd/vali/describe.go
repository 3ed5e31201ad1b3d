package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vali/internal/cli"
	"github.com/aretw0/vali/internal/presentation/describe"
	"github.com/aretw0/vali/internal/presentation/tui"
	"github.com/aretw0/vali/pkg/registry"
	"github.com/aretw0/vali/pkg/schema"
)

var describeCmd = &cobra.Command{
	Use:   "describe <scheme-name|file>",
	Short: "Document the fields of a scheme",
	Long: `Prints a table of every field of a scheme: type, requiredness, default and constraints.
The argument is a definition file when it exists on disk, otherwise the name of a stored scheme.
Output is rendered as styled markdown on a terminal and as plain markdown otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveScheme(cmd, args[0])
		if err != nil {
			return err
		}
		markdown := describe.Markdown(args[0], s)

		out := cmd.OutOrStdout()
		raw, _ := cmd.Flags().GetBool("raw")
		if f, ok := out.(*os.File); ok && !raw && tui.IsTerminal(f) {
			rendered, err := tui.NewRenderer()(markdown)
			if err == nil {
				markdown = rendered
			}
		}
		_, err = fmt.Fprint(out, markdown)
		return err
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print plain markdown even on a terminal")
}

func resolveScheme(cmd *cobra.Command, ref string) (*schema.Scheme, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return cli.LoadSchemeFile(ref, registry.Default())
	}
	app, _, err := newApp(cmd, false)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return app.Engine.Scheme(cmd.Context(), ref)
}
