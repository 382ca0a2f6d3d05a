package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"nidextract/internal/config"
	"nidextract/internal/extractor"
	"nidextract/internal/logger"
	"nidextract/internal/nid"
	"nidextract/internal/ocr"
	"nidextract/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the NID extraction HTTP service",
	Long: `Start an HTTP server that accepts NID card images and returns the
extracted fields as JSON.

The server exposes:
  GET  /health               liveness probe
  GET  /metrics              cache counters
  POST /api/v1/nid/extract   multipart extraction (nid_front, nid_back)
  POST /api/v1/cache/clear   drop all cached results

Configuration is read from environment variables; see the config
package documentation for the full list. The front and back card
sides can use different recognition engines (OCR_FRONT_ENGINE,
OCR_BACK_ENGINE).`,
	Example: `  # Start with defaults (0.0.0.0:8080)
  nidextract serve

  # Override the port
  PORT=9090 nidextract serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := svc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close extraction service")
		}
	}()

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("front_engine", cfg.FrontEngine).
		Str("back_engine", cfg.BackEngine).
		Bool("cache", cfg.EnableCache).
		Msg("Starting NID extraction service")

	srv := server.New(cfg, svc)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}

// buildExtractor constructs the per-side recognition engines and wires them
// into the extraction service. When both sides use the same engine kind, one
// engine instance is shared.
func buildExtractor(ctx context.Context, cfg *config.Config) (*extractor.Service, error) {
	log := logger.WithComponent("serve")

	opts := ocr.Options{
		Languages:     cfg.TesseractLanguages,
		MaxImageBytes: cfg.MaxFileSize,
	}

	front, err := ocr.NewEngine(ctx, cfg.FrontEngine, opts)
	if err != nil {
		log.Error().
			Err(err).
			Str("engine", cfg.FrontEngine).
			Msg("Failed to create front-side engine")
		return nil, fmt.Errorf("failed to create front-side engine: %w", err)
	}

	back := front
	if cfg.BackEngine != cfg.FrontEngine {
		back, err = ocr.NewEngine(ctx, cfg.BackEngine, opts)
		if err != nil {
			_ = front.Close()
			log.Error().
				Err(err).
				Str("engine", cfg.BackEngine).
				Msg("Failed to create back-side engine")
			return nil, fmt.Errorf("failed to create back-side engine: %w", err)
		}
	}

	parserCfg := nid.DefaultConfig()
	parserCfg.ConfidenceThreshold = cfg.ConfidenceThreshold
	parserCfg.MaxNameLines = cfg.MaxNameLines

	return extractor.New(front, back, extractor.Config{
		EnableCache:  cfg.EnableCache,
		CacheMaxSize: cfg.CacheMaxSize,
		CacheTTL:     cfg.CacheTTL,
		Parser:       parserCfg,
	}), nil
}
