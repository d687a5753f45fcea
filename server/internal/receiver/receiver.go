package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/firewatch/firewatch/pkg/types"
	"github.com/firewatch/firewatch/pkg/wire"
	"github.com/firewatch/firewatch/server/internal/metrics"
	"github.com/firewatch/firewatch/server/internal/store"
)

// Evaluator checks an accepted sweep against alert rules.
// *alerts.Engine implements it.
type Evaluator interface {
	Evaluate(sw *types.Sweep)
}

// Notifier is told when the store changed. *ws.Hub implements it.
type Notifier interface {
	Notify()
}

// Receiver accepts published sweeps.
type Receiver struct {
	wire.UnimplementedSweepServiceServer

	store   *store.Store
	alerts  Evaluator
	metrics *metrics.Metrics
	notify  Notifier
	now     func() time.Time
}

// Option configures optional collaborators of a Receiver.
type Option func(*Receiver)

// WithAlerts evaluates every accepted sweep with e.
func WithAlerts(e Evaluator) Option { return func(r *Receiver) { r.alerts = e } }

// WithMetrics records accepted and rejected sweeps in m.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Receiver) { r.metrics = m } }

// WithNotifier calls n.Notify after every stored sweep.
func WithNotifier(n Notifier) Option { return func(r *Receiver) { r.notify = n } }

// New creates a Receiver that writes accepted sweeps to st.
func New(st *store.Store, opts ...Option) *Receiver {
	r := &Receiver{store: st, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Publish validates and stores one sweep.
func (r *Receiver) Publish(ctx context.Context, sw *types.Sweep) (*wire.PublishResponse, error) {
	if sw.SiteID == "" {
		r.metrics.Rejected("missing_site")
		return nil, status.Error(codes.InvalidArgument, "site_id is required")
	}
	if len(sw.Reports) == 0 {
		r.metrics.Rejected("no_reports")
		return nil, status.Errorf(codes.InvalidArgument, "sweep for site %q carries no scenario reports", sw.SiteID)
	}
	if sw.Baseline().Scenario.ID != types.BaselineID {
		slog.Warn("receiver: sweep has no baseline scenario, comparing against the first report",
			"site_id", sw.SiteID, "first", sw.Reports[0].Scenario.ID)
	}

	r.store.Put(sw)
	if r.alerts != nil {
		r.alerts.Evaluate(sw)
	}
	r.metrics.ObserveSweep(sw, r.now())
	if r.notify != nil {
		r.notify.Notify()
	}

	base := sw.Baseline().Summary
	slog.Debug("receiver: sweep stored",
		"site_id", sw.SiteID,
		"sweep_id", sw.ID,
		"source", sw.Source,
		"scenarios", len(sw.Reports),
		"baseline_avg_risk", base.AvgRisk,
		"baseline_critical", base.CriticalEvents,
	)

	return &wire.PublishResponse{
		OK:      true,
		Message: fmt.Sprintf("stored %d scenarios for %s", len(sw.Reports), sw.SiteID),
	}, nil
}
