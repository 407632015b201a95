/*
Package observability turns engine analysis hooks into Prometheus metrics and structured logs.

Hook sets can be combined, so a single engine can feed metrics and debug logging at once:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
