package main

import (
	"fmt"

	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/validator"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the site definition for consistency",
	Long: `Reports unknown processes, view types and forward targets as errors, and
forward cycles, unreachable controllers and controllers that never render as
warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		def, err := site.LoadFile(cfg.Site)
		if err != nil {
			return err
		}
		reg, err := cli.CreateRegistry(cfg)
		if err != nil {
			return err
		}

		issues := validator.Validate(def, reg)
		out := cmd.OutOrStdout()
		for _, issue := range issues {
			fmt.Fprintln(out, issue)
		}

		if validator.HasErrors(issues) || (strict && len(issues) > 0) {
			return fmt.Errorf("validation failed: %d issue(s)", len(issues))
		}
		fmt.Fprintln(out, "Site is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat warnings as errors")
}
