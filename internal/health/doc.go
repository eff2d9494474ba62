// Package health serves the liveness endpoint and Prometheus metrics over
// HTTP.
package health
