package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediqa/casesim/internal/logging"
	"mediqa/casesim/internal/service"
	"mediqa/casesim/internal/transport/rest"
	"mediqa/casesim/internal/transport/ws"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the controller API and websocket push channel",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("port", "", "HTTP port (default 8080)")
	f.String("redis-uri", "", "Redis address for the tab store; empty keeps tabs in memory")
	f.String("mongo-uri", "", "MongoDB URI for the attempt archive; empty keeps attempts in memory")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	logger := logging.New("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	wsHub := ws.NewHub()
	defer wsHub.Stop()

	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TabTokenTTL)
	tabSvc := service.NewTabService(
		st.tabs,
		service.NewGateway(cfg.APIBaseURL, cfg.RequestTimeout),
		service.NewRenderer(nil),
		st.attempts,
		authSvc,
		logging.New("controller"),
	)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	tabSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		TabService:         tabSvc,
		WSHub:              wsHub,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("api_base_url", cfg.APIBaseURL),
			slog.Duration("request_timeout", cfg.RequestTimeout))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
