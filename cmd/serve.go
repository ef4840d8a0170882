package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"legallyai/jobboard-service/internal/grpcserver"
	"legallyai/jobboard-service/internal/scheduler"
	"legallyai/jobboard-service/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC API",
	Long: `Starts the job search API on JOBBOARD_PORT and, unless JOBBOARD_GRPC_PORT
is empty, the gRPC service next to it. With Redis configured, the warm-up
scheduler keeps the cache populated for WARM_QUERIES.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	errCh := make(chan error, 2)

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := server.New(a.svc, log, server.WithJWTSecret(cfg.JWTSecret)).HTTPServer(":" + cfg.Port)
	go func() {
		log.Info("HTTP listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ── gRPC server ──────────────────────────────────────────────────────────
	var gs *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			_ = srv.Close()
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpc.NewServer(grpc.ChainUnaryInterceptor(grpcserver.UnaryAuth(cfg.JWTSecret, log)))
		grpcserver.Register(gs, grpcserver.NewServer(a.svc, log))
		go func() {
			log.Info("gRPC listening", zap.String("addr", lis.Addr().String()))
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// ── Cache warm-up ────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if a.cached {
		sched = scheduler.New(a.svc, cfg.Warm.Schedule, cfg.Warm.Queries, log)
		if err := sched.Start(ctx); err != nil {
			log.Error("scheduler disabled", zap.Error(err))
			sched = nil
		}
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info("shutting down…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if gs != nil {
		gs.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("stopped")

	return runErr
}
