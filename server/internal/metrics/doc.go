// Package metrics exposes firewatch-server state in the Prometheus format.
//
// Every accepted sweep sets one gauge per summary field, labelled by site and
// scenario, so the series names match the textfile the modeler writes next to
// its CSV reports. Counters track accepted and rejected sweeps; WrapHandler
// instruments the REST routes. Handler serves the private registry on
// /metrics.
//
// A nil *Metrics is valid and records nothing.
package metrics
