/*
Package observability provides tools for monitoring chain runs.

Metrics subscribes to the step hooks and the completion signal of a chain and
exposes Prometheus counters and histograms for them. Use domain.MergeHooks to
combine it with other subscribers.
*/
package observability
