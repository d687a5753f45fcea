package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/firewatch/firewatch/pkg/wire"
	"github.com/firewatch/firewatch/server/internal/alerts"
	"github.com/firewatch/firewatch/server/internal/api"
	"github.com/firewatch/firewatch/server/internal/auth"
	"github.com/firewatch/firewatch/server/internal/config"
	"github.com/firewatch/firewatch/server/internal/metrics"
	"github.com/firewatch/firewatch/server/internal/receiver"
	"github.com/firewatch/firewatch/server/internal/store"
	"github.com/firewatch/firewatch/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "firewatch.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("firewatch-server starting", "config", *configPath)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := alerts.Validate(cfg.Server.Alerts); err != nil {
		slog.Error("invalid alert rules", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"sweep_ttl", cfg.Server.Sweeps.TTL,
		"alert_rules", len(cfg.Server.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(cfg.Server.Sweeps.TTL)
	go st.Run(ctx)

	alertEngine := alerts.New(cfg.Server.Alerts)
	m := metrics.New(func() int { return len(st.List()) }, alertEngine.FiringCount)

	hub := ws.New(st, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(auth.Interceptor(cfg.Server.Auth)))
	wire.RegisterSweepServiceServer(grpcSrv, receiver.New(st,
		receiver.WithAlerts(alertEngine),
		receiver.WithMetrics(m),
		receiver.WithNotifier(hub),
	))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		slog.Error("failed to listen on gRPC port", "port", cfg.Server.GRPCPort, "err", err)
		os.Exit(1)
	}
	go func() {
		slog.Info("gRPC receiver listening", "port", cfg.Server.GRPCPort)
		if err := grpcSrv.Serve(lis); err != nil {
			slog.Error("gRPC server stopped", "err", err)
		}
	}()

	// The hub is mounted unwrapped: upgrading needs the raw http.Hijacker.
	mux := http.NewServeMux()
	mux.Handle("/api/", m.WrapHandler("/api/v1", api.New(st, alertEngine)))
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", m.Handler())

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("firewatch-server shutting down")
	grpcSrv.GracefulStop()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	alertEngine.Wait()
}

// loadConfig reads path, falling back to the built-in defaults when the file
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "config", path)
		return config.Default(), nil
	}
	return config.Load(path)
}
