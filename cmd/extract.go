package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"nidextract/internal/config"
	"nidextract/internal/extractor"
	"nidextract/internal/logger"
	"nidextract/internal/nid"
	"nidextract/internal/ocr"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image-file]",
	Short: "Extract NID fields from a single card image",
	Long: `Process one NID card image and print the extracted fields as JSON.

The --side flag selects which card side the image shows: the front
side yields name, date of birth and NID number; the back side yields
the address block. The recognition engine defaults to the configured
engine for that side and can be overridden with --engine.

Required environment variables for the vision and documentai engines:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract front-side fields
  nidextract extract front.jpg

  # Extract the back-side address with Tesseract
  nidextract extract back.jpg --side back --engine tesseract

  # Save the result to a file
  nidextract extract front.jpg -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("side", "front", "Card side: front or back")
	extractCmd.Flags().String("engine", "", "Recognition engine: vision, documentai or tesseract (default: configured engine for the side)")
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	sideFlag, _ := cmd.Flags().GetString("side")
	engineFlag, _ := cmd.Flags().GetString("engine")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	side := extractor.Side(sideFlag)
	if side != extractor.SideFront && side != extractor.SideBack {
		return fmt.Errorf("invalid side %q: must be front or back", sideFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engineKind := engineFlag
	if engineKind == "" {
		engineKind = cfg.FrontEngine
		if side == extractor.SideBack {
			engineKind = cfg.BackEngine
		}
	}

	log.Info().
		Str("file", imagePath).
		Str("side", string(side)).
		Str("engine", engineKind).
		Int("timeout", timeoutSecs).
		Msg("Starting extraction")

	image, err := readImageFile(imagePath, cfg.MaxFileSize, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.NewEngine(ctx, engineKind, ocr.Options{
		Languages:     cfg.TesseractLanguages,
		MaxImageBytes: cfg.MaxFileSize,
	})
	if err != nil {
		log.Error().Err(err).Str("engine", engineKind).Msg("Failed to create recognition engine")
		return fmt.Errorf("failed to create recognition engine: %w", err)
	}

	parserCfg := nid.DefaultConfig()
	parserCfg.ConfidenceThreshold = cfg.ConfidenceThreshold
	parserCfg.MaxNameLines = cfg.MaxNameLines

	svc := extractor.New(engine, engine, extractor.Config{
		EnableCache: false,
		Parser:      parserCfg,
	})
	defer func() {
		if closeErr := svc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close extraction service")
		}
	}()

	start := time.Now()
	result, err := svc.Extract(ctx, image, side)
	if err != nil {
		log.Error().Err(err).Str("file", imagePath).Msg("Extraction failed")
		return fmt.Errorf("extraction failed: %w", err)
	}

	log.Info().
		Str("side", string(side)).
		Dur("duration", time.Since(start)).
		Msg("Extraction completed")

	return outputResult(result, outputPath, log)
}

// readImageFile loads the image and enforces the configured size cap before
// any recognition work happens.
func readImageFile(path string, maxBytes int64, log zerolog.Logger) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}
	if !info.Mode().IsRegular() {
		log.Error().Str("file", path).Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		log.Error().Str("file", path).Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", path)
	}
	if info.Size() > maxBytes {
		log.Error().
			Str("file", path).
			Int64("size", info.Size()).
			Int64("max", maxBytes).
			Msg("Image file exceeds maximum size")
		return nil, fmt.Errorf("image file exceeds maximum size of %d bytes", maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

func outputResult(result *extractor.Result, outputPath string, log zerolog.Logger) error {
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	encoded = append(encoded, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		log.Error().Err(err).Str("output", outputPath).Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output", outputPath).Msg("Result written")
	return nil
}
