package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"

	"mediqa/casesim/internal/logging"
	"mediqa/casesim/internal/service"
	"mediqa/casesim/internal/stubapi"
	"mediqa/casesim/internal/terminal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var playFlags struct {
	stub bool
	seed uint64
	tab  string
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Work through cases interactively in the terminal",
	Long: "play opens a tab session in-process and reads answers line by line.\n" +
		"Type :help for commands. With --stub a built-in backend serves the cases.",
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.BoolVar(&playFlags.stub, "stub", false, "Serve cases from the built-in stub backend")
	f.Uint64Var(&playFlags.seed, "seed", 1, "Case selection seed for --stub")
	f.StringVar(&playFlags.tab, "tab", "", "Resume a tab id (requires a shared tab store such as Redis)")
	f.String("redis-uri", "", "Redis address for the tab store; empty keeps the tab in memory")
	f.String("mongo-uri", "", "MongoDB URI for the attempt archive; empty keeps attempts in memory")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	logger := logging.New("play")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	baseURL := cfg.APIBaseURL
	if playFlags.stub {
		url, shutdown, err := startStub(playFlags.seed)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = url
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	tabID := playFlags.tab
	if tabID == "" {
		tabID = service.NewTabID()
	}
	ctrl := service.NewController(tabID, st.tabs,
		service.NewGateway(baseURL, cfg.RequestTimeout),
		service.NewRenderer(nil),
		logging.New("controller"))
	ctrl.SetAttemptRepo(st.attempts)

	fmt.Fprintf(cmd.OutOrStdout(), "Tab %s (type :help for commands)\n", tabID)
	return terminal.Run(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
}

// startStub serves the stub backend on a loopback port
func startStub(seed uint64) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, errors.Wrap(err, "listen for stub backend")
	}
	srv := &http.Server{Handler: stubapi.New(stubapi.Options{Seed: seed}).Handler()}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.New("stubapi").Error("stub backend stopped", "error", err)
		}
	}()
	return "http://" + ln.Addr().String(), func() { srv.Shutdown(context.Background()) }, nil
}
