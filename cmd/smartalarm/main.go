package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"smart_alarm/internal/announce"
	"smart_alarm/internal/config"
	"smart_alarm/internal/db"
	"smart_alarm/internal/diagnostics"
	"smart_alarm/internal/engine"
	"smart_alarm/internal/feed"
	"smart_alarm/internal/fetcher"
	"smart_alarm/internal/logger"
	"smart_alarm/internal/metrics"
	"smart_alarm/internal/middleware"
	"smart_alarm/internal/server"
	"smart_alarm/internal/speech"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	listenAddr string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "smartalarm",
		Short: "Run the smart alarm clock web server.",
		Long: `Starts the alarm clock: a web page for setting alarms that announce
weather, news headlines and local coronavirus figures when they go off,
plus a list of dismissable news notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx)
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to configuration file (JSON or YAML)")
	rootCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides listen_addr from config")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger.Init(debug)
	defer logger.Log.Info("Application stopped")

	// Загрузка конфигурации
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	// Диагностика: всегда в лог, при наличии database_url ещё и в PostgreSQL
	recorders := diagnostics.Multi{diagnostics.LogRecorder{}}
	if cfg.DatabaseURL != "" {
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connection error: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("db migration error: %w", err)
		}
		recorders = append(recorders, diagnostics.NewStoreRecorder(database))
	}

	var speaker speech.Speaker = &speech.Log{}
	if len(cfg.TTSCommand) > 0 {
		cmd, err := speech.NewCommand(cfg.TTSCommand)
		if err != nil {
			return fmt.Errorf("speech setup error: %w", err)
		}
		speaker = cmd
	}

	m := metrics.New()
	client := fetcher.NewClient(cfg)
	pipeline := announce.NewPipeline(client, client, client, speaker, recorders, m)

	eng := engine.New(engine.Options{
		Announcer:        pipeline,
		Feed:             feed.NewCache(client, recorders, m),
		Metrics:          m,
		PollInterval:     cfg.PollEvery(),
		RefreshPerMinute: cfg.RefreshPerMinute,
	})
	eng.Run(ctx)
	defer eng.Shutdown()

	// HTTP сервер
	mux := http.NewServeMux()
	server.NewServer(eng, time.Local).Routes(mux)
	mux.Handle("GET /metrics", m.Handler())

	handler := middleware.RecoverMiddleware(mux)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}
