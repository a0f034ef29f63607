/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks values, so hosts combine them with
LifecycleHooks.Merge and pass the result to the engine.
*/
package observability
