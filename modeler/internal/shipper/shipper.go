package shipper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
	"github.com/firewatch/firewatch/pkg/wire"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second
)

// Shipper buffers sweeps and publishes them to firewatch-server.
type Shipper struct {
	cfg    config.ModelerConfig
	buf    chan *types.Sweep
	dialFn dialFunc
}

// dialFunc opens the gRPC connection. Tests swap in a local listener.
type dialFunc func(ctx context.Context, endpoint string) (*grpc.ClientConn, error)

// New creates a Shipper for the modeler config.
func New(cfg config.ModelerConfig) *Shipper {
	size := cfg.BufferSize
	if size <= 0 {
		size = config.DefaultBufferSize
	}
	return &Shipper{
		cfg:    cfg,
		buf:    make(chan *types.Sweep, size),
		dialFn: defaultDial,
	}
}

// Ship enqueues sw without blocking. A full buffer drops its oldest sweep.
func (s *Shipper) Ship(sw *types.Sweep) {
	select {
	case s.buf <- sw:
	default:
		select {
		case old := <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest sweep",
				"sweep", old.ID, "buffer_cap", cap(s.buf))
		default:
		}
		s.buf <- sw
	}
}

// Run drains the buffer until ctx is cancelled, reconnecting with backoff
// whenever the connection fails.
func (s *Shipper) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dialFn(ctx, s.cfg.ServerEndpoint)
		if err != nil {
			wait := bo.next()
			slog.Error("shipper: dial failed, will retry",
				"endpoint", s.cfg.ServerEndpoint, "err", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				continue
			}
		}

		slog.Info("shipper: connected", "endpoint", s.cfg.ServerEndpoint)
		bo.reset()

		err = s.drain(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return
		}

		wait := bo.next()
		slog.Warn("shipper: connection lost, will reconnect",
			"endpoint", s.cfg.ServerEndpoint, "err", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// drain publishes buffered sweeps until a transient error or ctx ends.
func (s *Shipper) drain(ctx context.Context, conn *grpc.ClientConn) error {
	client := wire.NewSweepServiceClient(conn)

	for {
		select {
		case <-ctx.Done():
			return nil

		case sw := <-s.buf:
			err := s.publish(ctx, client, sw)
			if err == nil {
				continue
			}
			if isPermanentError(err) {
				slog.Error("shipper: permanent send error, discarding sweep",
					"sweep", sw.ID, "site", sw.SiteID, "err", err)
				continue
			}

			// Requeue unless newer sweeps already filled the buffer.
			select {
			case s.buf <- sw:
			default:
			}
			return fmt.Errorf("send: %w", err)
		}
	}
}

// Send publishes sw once over a fresh connection.
func (s *Shipper) Send(ctx context.Context, sw *types.Sweep) error {
	conn, err := s.dialFn(ctx, s.cfg.ServerEndpoint)
	if err != nil {
		return fmt.Errorf("shipper: dial %s: %w", s.cfg.ServerEndpoint, err)
	}
	defer conn.Close()

	if err := s.publish(ctx, wire.NewSweepServiceClient(conn), sw); err != nil {
		return fmt.Errorf("shipper: publish %s: %w", sw.ID, err)
	}
	return nil
}

func (s *Shipper) publish(ctx context.Context, client wire.SweepServiceClient, sw *types.Sweep) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if s.cfg.ServerAuth.Mode == "apikey" && s.cfg.ServerAuth.KeyEnv != "" {
		sendCtx = metadata.AppendToOutgoingContext(sendCtx,
			s.cfg.ServerAuth.EffectiveHeader(), s.cfg.ServerAuth.Key())
	}

	resp, err := client.Publish(sendCtx, sw)
	if err != nil {
		return err
	}
	if !resp.OK {
		slog.Warn("shipper: server rejected sweep", "sweep", sw.ID, "message", resp.Message)
		return nil
	}
	slog.Debug("shipper: sweep delivered", "sweep", sw.ID, "site", sw.SiteID)
	return nil
}

// isPermanentError reports gRPC codes that retrying cannot fix.
func isPermanentError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied:
		return true
	}
	return false
}

func defaultDial(ctx context.Context, endpoint string) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, endpoint, //nolint:staticcheck // DialContext kept for grpc 1.62 compat
		grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// backoff is truncated exponential backoff with ±25% jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

func (b *backoff) next() time.Duration {
	d := b.current
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
