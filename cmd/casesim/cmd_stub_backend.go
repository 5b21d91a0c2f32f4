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
	"mediqa/casesim/internal/stubapi"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var stubFlags struct {
	addr    string
	seed    uint64
	latency time.Duration
}

var stubBackendCmd = &cobra.Command{
	Use:   "stub-backend",
	Short: "Serve seeded cases and keyword scoring on the simulation endpoints",
	RunE:  runStubBackend,
}

func init() {
	f := stubBackendCmd.Flags()
	f.StringVar(&stubFlags.addr, "addr", ":5000", "Listen address")
	f.Uint64Var(&stubFlags.seed, "seed", uint64(time.Now().UnixNano()), "Case selection seed")
	f.DurationVar(&stubFlags.latency, "latency", 0, "Delay added to every response")
}

func runStubBackend(cmd *cobra.Command, _ []string) error {
	logger := logging.New("stubapi")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr: stubFlags.addr,
		Handler: stubapi.New(stubapi.Options{
			Seed:    stubFlags.seed,
			Latency: stubFlags.latency,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("stub backend starting", slog.String("addr", srv.Addr), slog.Uint64("seed", stubFlags.seed))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
