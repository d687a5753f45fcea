// Package series provides the input sample series for a sweep.
//
// Every provider implements Source and returns an ordered, finite series of
// types.Sample with 1-based, strictly increasing indexes and light clamped to
// [0, 255]. New(config.Input) returns the provider selected by input.source:
//
//   - csv: micro:bit data-logger export (csv.go); alternate column
//     spellings are accepted and malformed rows are skipped. Falls back to the
//     simulator when the file is missing or holds no usable rows.
//   - synthetic: smooth series fitted through six scalar bounds (synth.go)
//   - prompt: the same six bounds collected interactively (prompt.go)
//   - simulate: noisy 24-hour day cycle (simulate.go)
//   - scrape: Prometheus text exposition from a sensor gateway (scrape.go)
//
// Providers never score anything; they only hand samples to the risk package.
package series
