/*
Package observability provides tools for monitoring the vali engine.

Metrics turns engine lifecycle events into Prometheus counters and
histograms, and LogHooks writes the same events to a structured logger.
Both are domain.LifecycleHooks and can be merged.
*/
package observability
