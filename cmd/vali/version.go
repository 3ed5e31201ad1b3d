package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/vali"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vali",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vali version %s\n", strings.TrimSpace(vali.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
