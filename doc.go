// Package knotty provides a framework for application instrumentation. All
// metrics are safe for concurrent use. Considerable design influence has been
// taken from https://github.com/codahale/metrics and https://prometheus.io.
//
// Application code registers named, labeled measurements with a
// registry.Registry, updates them through the Counter, Gauge, and Histogram
// interfaces, and exports point-in-time Snapshots through the prometheus,
// influx, statsd, and graphite packages.
package knotty
