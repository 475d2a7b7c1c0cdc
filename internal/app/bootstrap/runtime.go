package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dexterhq/settlement/internal/adapters/ops"
	"github.com/dexterhq/settlement/internal/adapters/postgres"
	"github.com/dexterhq/settlement/internal/application"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	svc        *application.Service
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping settlement engine", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			PlatformFeePercent:      cfg.PlatformFeePercent,
			AutoReleaseDays:         cfg.AutoReleaseDays,
			MinWithdrawalCents:      cfg.MinWithdrawalCents,
			DefaultRevisionsAllowed: cfg.DefaultRevisionsAllowed,
			Currency:                cfg.Currency,
			SweepBatchSize:          cfg.SweepBatchSize,
		},
		Store:    postgres.NewStore(pool),
		Reader:   postgres.NewReader(pool),
		Notifier: postgres.NewNotifier(pool),
	})

	handler := ops.NewHandler(pool)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           ops.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		svc:        svc,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		cleanupFn: func(ctx context.Context) {
			_ = sqlDB.Close()
		},
	}, nil
}

// Service exposes the settlement operations for in-process callers.
func (r *Runtime) Service() *application.Service {
	return r.svc
}

// Run serves the ops endpoints and drives the auto-release sweeper until a
// shutdown signal arrives.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("ops http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc health server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	r.logger.Info("auto-release sweeper started", "interval", r.cfg.SweepInterval.String())

loop:
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutdown signal received")
			break loop
		case err := <-errCh:
			r.logger.Error("server failure", "error", err)
			break loop
		case <-ticker.C:
			released, err := r.svc.SweepAutoReleases(ctx)
			if err != nil {
				r.logger.Error("auto-release sweep failed", "error", err)
				continue
			}
			if released > 0 {
				r.logger.Info("auto-release sweep completed", "released", released)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
