// Package main provides the geotides HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"go.ngs.io/geotides/internal/app"
	"go.ngs.io/geotides/internal/config"
	httpHandler "go.ngs.io/geotides/internal/http"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/observability"
)

const (
	version         = "0.1.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", os.Getenv("GEOTIDES_CONFIG"), "Path to the YAML configuration")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		fmt.Printf("geotides-server version %s\n", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "geotides-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.NewFromEnv()
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "geotides-server",
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	log.Info(ctx, "starting geotides server",
		logging.String("port", cfg.Server.Port),
		logging.String("data_dir", cfg.DataDir))

	svc, err := app.Build(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpHandler.SetupRouter(httpHandler.RouterConfig{
		Service:        svc,
		Metrics:        metrics,
		Logger:         log,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", logging.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("geotides server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  geotides-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -config PATH   YAML configuration (default: $GEOTIDES_CONFIG)")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  GEOTIDES_DATA_DIR       Base directory for relative data paths")
	fmt.Println("  GEOTIDES_EOP_FILE       EOP table (IERS C04 layout)")
	fmt.Println("  GEOTIDES_CONCURRENCY    Epochs evaluated in parallel")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  LOG_LEVEL, LOG_FORMAT   Logger level and format (json or text)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET  /health                  Health check")
	fmt.Println("  GET  /metrics                 Prometheus metrics")
	fmt.Println("  GET  /v1/eop                  Earth orientation parameters")
	fmt.Println("  GET  /v1/constituents         Named tidal constituents")
	fmt.Println("  GET  /v1/tides/components     Configured tide components")
	fmt.Println("  GET  /v1/tides/evaluate       Tidal potential and gravity at one point")
	fmt.Println("  POST /v1/tides/evaluate       Tidal potential and gravity at many points")
	fmt.Println("  POST /v1/tides/deformation    Station displacements")
	fmt.Println("  POST /v1/tides/orbit          Tidal acceleration along a TLE orbit")
	fmt.Println("  GET  /v1/tides/harmonics      Spherical harmonic expansion at one epoch")
	fmt.Println()
}
