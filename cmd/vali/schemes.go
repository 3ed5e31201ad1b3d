package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vali/internal/cli"
	"github.com/aretw0/vali/pkg/adapters/openapi"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Manage stored schemes",
	Long:  `List, inspect, store and remove named schemes in the configured store (memory, file directory or redis).`,
}

var schemesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored schemes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		names, err := app.Engine.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing schemes: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "No schemes found.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

var schemesGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the stored definition of a scheme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		def, err := app.Engine.Definition(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading scheme '%s': %w", args[0], err)
		}
		_, err = cmd.OutOrStdout().Write(def)
		return err
	},
}

var schemesPutCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Store a definition under a name",
	Long:  `Parses the definition file (YAML or JSON, "-" for stdin) and stores it only if it is a valid scheme.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := cli.ReadSource(args[1], cmd.InOrStdin())
		if err != nil {
			return err
		}
		app, _, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Engine.Put(cmd.Context(), args[0], def)
		if err != nil {
			return fmt.Errorf("error storing scheme '%s': %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored '%s' (%d fields).\n", args[0], s.Len())
		return nil
	},
}

var schemesRmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove one or more schemes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, name := range args {
			if err := app.Engine.Delete(cmd.Context(), name); err != nil {
				return fmt.Errorf("error removing scheme '%s': %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s'.\n", name)
		}
		return nil
	},
}

var schemesImportCmd = &cobra.Command{
	Use:   "import <openapi-file>",
	Short: "Store the object schemas of an OpenAPI 3 document",
	Long:  `Converts every object schema under components.schemas into a scheme stored under the component name.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		defs, err := openapi.Load(cmd.Context(), data)
		if err != nil {
			return err
		}
		app, _, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, name := range defs.Names() {
			if _, err := app.Engine.Put(cmd.Context(), name, defs[name]); err != nil {
				return fmt.Errorf("error storing scheme '%s': %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported '%s'.\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemesCmd)
	schemesCmd.AddCommand(schemesLsCmd, schemesGetCmd, schemesPutCmd, schemesRmCmd, schemesImportCmd)
}
