// Package report renders a sweep for people and for other tools.
//
// Three outputs are produced from the same []types.ScenarioReport:
//
//   - Result files: one CSV per scenario with the fixed column order
//     reading, temperature, light, rolling_avg, warning_threshold, fire_risk,
//     warning_margin. Reals carry one decimal. An empty run writes nothing.
//   - Console text: per-scenario summaries, the impact of each scenario
//     against the baseline, and a final comparison table.
//   - A node-exporter textfile with one gauge per summary field, labelled by
//     site and scenario, so the sweep can be scraped without the server.
package report
