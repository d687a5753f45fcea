package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const deliveryTimeout = 10 * time.Second

// payloadFunc renders an alert as the JSON body a webhook type expects.
type payloadFunc func(a *Alert) interface{}

var payloads = map[string]payloadFunc{
	"slack": slackPayload,
	"teams": teamsPayload,
	"http":  func(a *Alert) interface{} { return map[string]interface{}{"source": "firewatch", "alert": a} },
}

// deliver posts a to every webhook with a resolvable URL. Failures are only
// logged.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		render, ok := payloads[wh.Type]
		if !ok {
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}
		body, err := json.Marshal(render(a))
		if err == nil {
			err = e.post(url, body)
		}
		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type, "rule", a.RuleName, "site", a.SiteID, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered", "type", wh.Type, "rule", a.RuleName, "state", a.State)
	}
}

func facts(a *Alert) [][2]string {
	return [][2]string{
		{"Site", a.SiteID},
		{"Scenario", a.Scenario},
		{"Value", strconv.FormatFloat(a.Value, 'f', 2, 64)},
		{"State", a.State},
	}
}

func slackPayload(a *Alert) interface{} {
	text := severityTag(a.Severity) + " " + a.Message
	color := severityColor(a.Severity)
	if a.State == "resolved" {
		text = fmt.Sprintf("[RESOLVED] %s on %s/%s", a.RuleName, a.SiteID, a.Scenario)
		color = "2EB67D"
	}
	fields := make([]map[string]interface{}, 0, 4)
	for _, f := range facts(a) {
		fields = append(fields, map[string]interface{}{"title": f[0], "value": f[1], "short": true})
	}
	return map[string]interface{}{
		"text": text,
		"attachments": []map[string]interface{}{
			{"color": "#" + color, "fields": fields},
		},
	}
}

func teamsPayload(a *Alert) interface{} {
	ff := make([]map[string]string, 0, 4)
	for _, f := range facts(a) {
		ff = append(ff, map[string]string{"name": f[0], "value": f[1]})
	}
	return map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(a.Severity),
		"summary":    a.RuleName + " " + a.State,
		"title":      fmt.Sprintf("Firewatch %s: %s", severityTag(a.Severity), a.RuleName),
		"text":       a.Message,
		"sections":   []map[string]interface{}{{"facts": ff}},
	}
}

func (e *Engine) post(url string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook answered HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityTag(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	}
	return "[INFO]"
}

func severityColor(s string) string {
	switch s {
	case "critical":
		return "D7263D"
	case "warning":
		return "F46036"
	}
	return "1B998B"
}
