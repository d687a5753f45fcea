package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/firewatch/firewatch/pkg/types"
	"github.com/firewatch/firewatch/server/internal/config"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert is one alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	SiteID     string     `json:"site_id"`
	Scenario   string     `json:"scenario"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"
}

type rule struct {
	config.AlertRule
	cond condition
}

// Engine evaluates alert rules against incoming sweeps and delivers webhook
// notifications when rules fire or resolve. Alerts are tracked per
// (rule, site, scenario).
//
// Engine is safe for concurrent use.
type Engine struct {
	rules    []rule
	webhooks []config.WebhookConfig

	mu       sync.Mutex
	active   map[string]*Alert
	lastFire map[string]time.Time
	history  []*Alert
	client   *http.Client
	now      func() time.Time
	wg       sync.WaitGroup
}

// Validate checks that every rule condition parses.
func Validate(cfg config.AlertsConfig) error {
	for _, r := range cfg.Rules {
		if _, err := parseCondition(r.Condition); err != nil {
			return fmt.Errorf("alerts: rule %q: %w", r.Name, err)
		}
	}
	return nil
}

// New creates an Engine from the alert configuration. Rules whose condition
// does not parse are logged and skipped; call Validate first to reject them.
func New(cfg config.AlertsConfig) *Engine {
	e := &Engine{
		webhooks: cfg.Webhooks,
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	for _, r := range cfg.Rules {
		c, err := parseCondition(r.Condition)
		if err != nil {
			slog.Error("alerts: skipping rule", "rule", r.Name, "err", err)
			continue
		}
		if r.Cooldown <= 0 {
			r.Cooldown = defaultCooldown
		}
		if r.Severity == "" {
			r.Severity = "warning"
		}
		e.rules = append(e.rules, rule{AlertRule: r, cond: c})
	}
	return e
}

// Evaluate tests every rule against every matching scenario in sw. Newly
// firing alerts and alerts whose condition cleared are delivered to the
// webhooks asynchronously. Scenarios absent from sw are left untouched.
func (e *Engine) Evaluate(sw *types.Sweep) {
	if len(e.rules) == 0 || sw == nil {
		return
	}

	now := e.now()
	for _, r := range e.rules {
		for i := range sw.Reports {
			rep := &sw.Reports[i]
			if r.Scenario != "" && r.Scenario != rep.Scenario.ID {
				continue
			}
			e.evaluateOne(r, sw.SiteID, rep, now)
		}
	}
}

func (e *Engine) evaluateOne(r rule, siteID string, rep *types.ScenarioReport, now time.Time) {
	key := r.Name + ":" + siteID + ":" + rep.Scenario.ID
	fires, value := r.cond.eval(rep.Summary)

	e.mu.Lock()
	var notify *Alert

	if fires {
		if now.Sub(e.lastFire[key]) > r.Cooldown {
			a := &Alert{
				ID:       uuid.NewString(),
				RuleName: r.Name,
				SiteID:   siteID,
				Scenario: rep.Scenario.ID,
				Severity: r.Severity,
				Value:    value,
				Message: fmt.Sprintf("[%s] %s fired on %s/%s: %s (value %.2f)",
					r.Severity, r.Name, siteID, rep.Scenario.ID, r.Condition, value),
				FiredAt: now,
				State:   "firing",
			}
			e.active[key] = a
			e.lastFire[key] = now
			cp := *a
			notify = &cp
			slog.Warn("alert fired",
				"rule", r.Name, "site", siteID, "scenario", rep.Scenario.ID,
				"value", value, "severity", r.Severity)
		}
	} else if a, ok := e.active[key]; ok {
		resolved := now
		a.State = "resolved"
		a.ResolvedAt = &resolved
		delete(e.active, key)

		e.history = append(e.history, a)
		if len(e.history) > maxHistoryLen {
			e.history = e.history[len(e.history)-maxHistoryLen:]
		}
		cp := *a
		notify = &cp
		slog.Info("alert resolved", "rule", r.Name, "site", siteID, "scenario", rep.Scenario.ID)
	}
	e.mu.Unlock()

	if notify != nil && len(e.webhooks) > 0 {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.deliver(notify)
		}()
	}
}

// Active returns copies of all firing alerts plus alerts resolved within the
// past hour, newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))
	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}

// FiringCount returns the number of alerts currently firing.
func (e *Engine) FiringCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Wait blocks until in-flight webhook deliveries finish.
func (e *Engine) Wait() {
	e.wg.Wait()
}
