package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/spf13/cobra"

	"roamgenie/internal/config"
	httptransport "roamgenie/internal/http"
	"roamgenie/internal/http/middleware"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func serve(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Load the visa dataset now so the first passport request does not pay for the download.
	go func() {
		log.Printf("passport dataset ready: %d passports", len(a.passport.Countries(ctx)))
	}()

	var limiter middleware.Allower = middleware.NewMemoryLimiter()
	if a.redis != nil {
		limiter = redis_rate.NewLimiter(a.redis)
	}

	gin.SetMode(gin.ReleaseMode)
	server := httptransport.NewServer(httptransport.ServerDeps{
		Scanner:        a.scanner,
		WarRoom:        a.warroom,
		Passport:       a.passport,
		Planner:        a.planner,
		Emergency:      a.emergency,
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}).NewHTTPServer(cfg.HTTP.Addr)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("RoamGenie backend listening on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
