package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/humdrum"
	"github.com/aretw0/humdrum/internal/cli"
	"github.com/aretw0/humdrum/internal/presentation/graph"
	"github.com/aretw0/humdrum/pkg/domain"
	"github.com/aretw0/humdrum/pkg/mvc"
	"github.com/aretw0/humdrum/pkg/site"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the site as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart of controllers, views and forwards.
With --trace, a dry-run dispatch (in-memory session) highlights the
controllers it went through.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := site.LoadFile(cfg.Site)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if trace, _ := cmd.Flags().GetBool("trace"); trace {
			controller, _ := cmd.Flags().GetString("controller")
			rawParams, _ := cmd.Flags().GetStringArray("param")
			overlay, err = traceDispatch(cmd.Context(), def, controller, rawParams)
			if err != nil {
				return err
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("trace", false, "Highlight the path of a dry-run dispatch")
	graphCmd.Flags().String("controller", "", "Controller for --trace (default: entry)")
	graphCmd.Flags().StringArrayP("param", "p", nil, "Request parameter for --trace as key=value")
}

// traceDispatch runs one dispatch against a throwaway session and records the
// controllers involved. The innermost render happens first, so the first
// render event names the controller that produced the output.
func traceDispatch(ctx context.Context, def *site.Definition, controller string, rawParams []string) (*graph.GraphOverlay, error) {
	params, err := parseParams(rawParams)
	if err != nil {
		return nil, err
	}
	reg, err := cli.CreateRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	overlay := &graph.GraphOverlay{}
	hooks := mvc.Hooks{
		OnProcess: func(_ context.Context, e *mvc.ProcessEvent) {
			mu.Lock()
			defer mu.Unlock()
			overlay.Visited = append(overlay.Visited, e.Controller)
		},
		OnRender: func(_ context.Context, e *mvc.RenderEvent) {
			mu.Lock()
			defer mu.Unlock()
			overlay.Visited = append(overlay.Visited, e.Controller)
			if overlay.Current == "" {
				overlay.Current = e.Controller
			}
		},
	}

	app, err := humdrum.New(def, humdrum.WithRegistry(reg), humdrum.WithHooks(hooks), humdrum.WithMaxForwardDepth(maxTraceDepth(def)))
	if err != nil {
		return nil, err
	}
	req := domain.NewRequest(domain.SourceCLI, nil)
	req.Params = params
	if _, err := app.Dispatch(ctx, controller, "graph-trace", req); err != nil {
		return nil, fmt.Errorf("trace dispatch failed: %w", err)
	}
	return overlay, nil
}

// maxTraceDepth keeps a traced forward cycle from running forever.
func maxTraceDepth(def *site.Definition) int {
	if def.MaxForwardDepth > 0 {
		return def.MaxForwardDepth
	}
	return 2 * len(def.Controllers)
}
