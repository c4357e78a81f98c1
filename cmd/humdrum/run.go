package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/humdrum"
	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/config"
	"github.com/aretw0/humdrum/internal/presentation/tui"
	"github.com/aretw0/humdrum/internal/sanitize"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [controller]",
	Short: "Dispatch a request from the terminal",
	Long: `Dispatches one request to a controller (the entry controller by default)
and prints what the view rendered. With --interactive, reads one request per
line: "[controller] key=value ...". With --json, lines may be JSON objects
{"controller", "session_id", "params"} and each reply is one JSON line.

Sessions persist in the file store unless --store says otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Type == config.StoreMemory && !cmd.Flags().Changed("store") {
			cfg.Store.Type = config.StoreFile
		}
		sessionID, _ := cmd.Flags().GetString("session")
		interactive, _ := cmd.Flags().GetBool("interactive")
		headless, _ := cmd.Flags().GetBool("headless")
		jsonMode, _ := cmd.Flags().GetBool("json")
		rawParams, _ := cmd.Flags().GetStringArray("param")

		var controller string
		if len(args) > 0 {
			controller = args[0]
		}

		setup, err := cli.CreateApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer setup.Close()

		interactiveTerm := !headless && term.IsTerminal(int(os.Stdout.Fd()))

		if interactive {
			r := humdrum.NewRunner(os.Stdin, os.Stdout)
			r.Headless = headless
			r.JSON = jsonMode
			r.Controller = controller
			if interactiveTerm && !jsonMode {
				tui.PrintBanner(os.Stdout)
				r.Renderer = tui.NewRenderer()
			}
			return r.Run(cmd.Context(), setup.App, sessionID)
		}

		params, err := parseParams(rawParams)
		if err != nil {
			return err
		}
		req := domain.NewRequest(domain.SourceCLI, os.Stdout)
		req.Params = params

		model, err := setup.App.Dispatch(cmd.Context(), controller, sessionID, req)
		if err != nil {
			return err
		}
		if model.Location != "" {
			fmt.Fprintf(os.Stderr, "[%d → %s]\n", model.StatusCode(), model.Location)
		} else if model.StatusCode() >= 400 {
			fmt.Fprintf(os.Stderr, "[%d]\n", model.StatusCode())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArrayP("param", "p", nil, "Request parameter as key=value (repeatable)")
	runCmd.Flags().String("session", "cli", "Session ID")
	runCmd.Flags().BoolP("interactive", "i", false, "Read requests from stdin, one per line")
	runCmd.Flags().Bool("headless", false, "No banner, prompts or markdown styling")
	runCmd.Flags().Bool("json", false, "With --interactive, read and write JSON Lines")
}

// parseParams turns key=value pairs into sanitized request params.
func parseParams(pairs []string) (map[string]string, error) {
	raw := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", p)
		}
		raw[k] = v
	}
	return sanitize.Map(raw)
}
