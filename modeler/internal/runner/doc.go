// Package runner executes one sweep end to end: load the series, score every
// configured scenario, print the report, write the result files and hand the
// finished types.Sweep back to the caller for shipping.
package runner
