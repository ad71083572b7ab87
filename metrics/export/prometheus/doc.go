// Package prometheus renders authcore counters in Prometheus text
// exposition format, without depending on the Prometheus client library.
//
// Mount [Exporter.Handler] on a scrape endpoint, or call [Exporter.Render]
// directly.
package prometheus
