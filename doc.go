/*
Package humdrum is a small Model-View-Controller dispatch core with the
plumbing to run it behind a CLI, an HTTP server or an MCP server.

# Concept

A Controller owns an ordered chain of Processes and a set of named Views.
Handling a request runs the Processes in order; the first one that names a
registered View stops the chain and that View renders. When no Process
decides, the default View renders, and without one nothing happens. A View may
forward to another Controller, which then runs its own chain over the same
request and model.

The generic core lives in pkg/mvc. Everything else wires it up: pkg/domain
fixes the request and model types, pkg/site builds controllers from a YAML
file, pkg/session serialises dispatches per session and persists the model
through pkg/ports adapters (memory, file, Redis).

# Usage

	app, err := humdrum.Load("site.yaml")
	if err != nil {
		log.Fatal(err)
	}

	req := domain.NewRequest(domain.SourceCLI, os.Stdout)
	req.Set("user", "ada")
	if _, err := app.Dispatch(ctx, "main", "session-1", req); err != nil {
		log.Fatal(err)
	}

The core never logs. Pass WithLogger for debug logs of every step, or
WithHooks with observability.Metrics for Prometheus counters.
*/
package humdrum
