// Package metrics declares the Prometheus collectors for the gallery.
//
// All collectors are registered with the default registry at package init
// using promauto. To expose them, mount promhttp.Handler() on a route:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	r.Handle("/metrics", promhttp.Handler())
//
// InitializeMetrics pre-populates the common label combinations so that
// every series is present from the first scrape.
package metrics
