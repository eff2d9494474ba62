// Package metrics owns the Prometheus registry for the bot: search and
// download outcomes, download latency, and gauges for active jobs, busy
// pool slots and stored sessions. All recording methods are safe on a nil
// *Metrics so components can run without instrumentation.
package metrics
