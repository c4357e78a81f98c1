package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/humdrum"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of humdrum",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "humdrum version %s\n", strings.TrimSpace(humdrum.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
