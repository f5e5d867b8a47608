package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/jsonval"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jsonval",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jsonval version %s\n", strings.TrimSpace(jsonval.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
