/*
Package observability turns dispatch hooks into logs and Prometheus metrics.

The dispatch core never logs. Applications that want visibility pass the hooks
built here to the controllers (see site.WithHooks):

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(observability.LogHooks(logger), metrics.Hooks())
*/
package observability
