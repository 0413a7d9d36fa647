/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

	metrics := observability.NewMetrics()
	engine, _ := orca.New(ctx, "", orca.WithLifecycleHooks(metrics.Hooks(logger)))
	http.Handle("/metrics", metrics.Handler())

Metrics live in their own registry so several engines can run in one process.
*/
package observability
