/*
Package mvc is the request dispatch core of Humdrum.

A Controller owns a registry of named Views, an optional default View and an
ordered chain of Processes. HandleRequest runs the Processes in the order they
were added. The first Process that returns the key of a registered View wins:
that View is rendered and the dispatch stops. When no Process decides, the
default View is rendered, and when there is none the call is a silent no-op.

The request (R) and the model (M) are opaque to the core. They are passed by
reference through every Process and into the rendered View, so mutations made
by one step are visible to the next.

# Forwarding

Forward builds a View that re-enters another Controller with the same request
and model. Forward chains are not checked for cycles. A Controller configured
with WithMaxForwardDepth rejects entries nested deeper than the limit.

# Usage

	type Req struct{ User string }
	type Page struct{ Title string }

	home := mvc.NewController[*Req, *Page](mvc.WithName("home"))
	home.AddProcess(mvc.ProcessFunc[*Req, *Page](func(ctx context.Context, c *mvc.Controller[*Req, *Page], r *Req, p *Page) (string, error) {
		if r.User == "" {
			return "login", nil
		}
		return "", nil
	}))
	home.AddView("login", loginView)
	home.SetDefaultView(dashboardView)

	err := home.HandleRequest(ctx, &Req{}, &Page{})
*/
package mvc
