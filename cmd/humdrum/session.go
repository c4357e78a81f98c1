package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/config"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions in the configured store (file store by default).`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		sessions, err := backend.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the model of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		model, err := backend.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("requires at least 1 session id or --all")
		}

		backend, err := openSessionBackend(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		if all {
			args, err = backend.Store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
		}

		var failed int
		for _, id := range args {
			if err := backend.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}

// openSessionBackend opens the store "run" writes to: the file store unless
// --store or the config names another.
func openSessionBackend(cmd *cobra.Command) (*cli.Backend, error) {
	if cfg.Store.Type == config.StoreMemory && !cmd.Flags().Changed("store") {
		cfg.Store.Type = config.StoreFile
	}
	return cli.OpenBackend(cmd.Context(), cfg)
}
