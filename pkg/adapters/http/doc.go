/*
Package http exposes a humdrum application as an HTTP front controller.

Routes:

	ANY  /c/{controller}   dispatch; query and form values become params
	GET  /controllers      JSON list of controller names
	GET  /events           server-sent model diffs for ?session_id=
	GET  /healthz          liveness
	GET  /metrics          Prometheus metrics, when enabled

The session is taken from the X-Session-ID header or the humdrum_session
cookie. A new one is issued when neither is present.
*/
package http
