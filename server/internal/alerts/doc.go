// Package alerts evaluates threshold rules against the scenario summaries of
// each received sweep and notifies Slack, Teams or generic HTTP webhooks when
// an alert fires or resolves.
//
// A rule is "field op value" over one summary field (avg_risk,
// critical_events, high_light_events, peak_risk, peak_temp,
// final_warning_margin, readings), optionally restricted to one scenario ID.
// Alerts are keyed by (rule, site, scenario) and re-fire only after the
// rule's cooldown.
package alerts
