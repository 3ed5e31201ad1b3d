package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vali/internal/cli"
	"github.com/aretw0/vali/internal/presentation/tui"
	"github.com/aretw0/vali/pkg/domain"
	"github.com/aretw0/vali/pkg/registry"
	"github.com/aretw0/vali/pkg/schema"
	"github.com/aretw0/vali/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [data-file]",
	Short: "Validate a JSON or YAML document",
	Long: `Validates a document (a file, or stdin when omitted or "-") against a scheme
given either as a definition file (--scheme) or by the name of a stored scheme (--name).
The normalized document is printed; the exit code is 1 when validation fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("scheme", "s", "", "Scheme definition file (YAML or JSON)")
	validateCmd.Flags().StringP("name", "n", "", "Name of a stored scheme")
	validateCmd.Flags().Bool("strict", false, "Reject attributes the scheme does not declare")
	validateCmd.Flags().StringP("output", "o", cli.FormatText, "Output format: text, json, yaml or spew")
	validateCmd.Flags().Bool("diff", false, "Show a line diff between the input and the normalized output")
	validateCmd.Flags().Bool("changes", false, "List the fields normalization added, removed or rewrote")
	validateCmd.Flags().String("error-prefix", "", "Prefix prepended to the error message")
	validateCmd.MarkFlagsMutuallyExclusive("scheme", "name")
	validateCmd.MarkFlagsOneRequired("scheme", "name")
}

func runValidate(cmd *cobra.Command, args []string) error {
	source := "-"
	if len(args) > 0 {
		source = args[0]
	}
	raw, err := cli.ReadSource(source, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	data, err := cli.ParseData(raw)
	if err != nil {
		return err
	}

	var opts []validator.Option
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		opts = append(opts, validator.Strict())
	}
	if prefix, _ := cmd.Flags().GetString("error-prefix"); prefix != "" {
		opts = append(opts, validator.WithErrorPrefix(prefix))
	}

	res, err := validateWith(cmd, data, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := tui.Plain()
	if f, ok := out.(*os.File); ok {
		styles = tui.NewStyles(f)
	}

	format, _ := cmd.Flags().GetString("output")
	if err := cli.WriteResult(out, res, format, styles); err != nil {
		return err
	}
	if !res.OK() {
		return errInvalid
	}

	if showDiff, _ := cmd.Flags().GetBool("diff"); showDiff {
		diff, err := cli.RenderDiff(schema.Normalize(data), res.Data, styles)
		if err != nil {
			return err
		}
		fmt.Fprint(out, diff)
	}
	if showChanges, _ := cmd.Flags().GetBool("changes"); showChanges {
		cli.WriteChanges(out, domain.Diff(schema.Normalize(data), res.Data), styles)
	}
	return nil
}

func validateWith(cmd *cobra.Command, data any, opts []validator.Option) (*validator.Result, error) {
	if path, _ := cmd.Flags().GetString("scheme"); path != "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		s, err := cli.LoadSchemeFile(path, registry.Default())
		if err != nil {
			return nil, err
		}
		base := []validator.Option{
			validator.WithScheme(s),
			validator.WithUnknown(!cfg.Strict),
			validator.WithMaxDepth(cfg.MaxDepth),
		}
		return validator.Validate(data, append(base, opts...)...)
	}

	name, _ := cmd.Flags().GetString("name")
	app, _, err := newApp(cmd, false)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return app.Engine.Validate(cmd.Context(), name, data, opts...)
}
