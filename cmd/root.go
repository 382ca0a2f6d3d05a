package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"nidextract/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "nidextract",
	Short: "Extract structured fields from Bangladeshi NID card images",
	Long: `nidextract reads Bangladeshi National ID card images and extracts
structured fields: name, date of birth and NID number from the front
side, and the address block from the back side.

Run "nidextract serve" to start the HTTP extraction service, or
"nidextract extract" to process a single image from the command line.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("nidextract executed")

		fmt.Println("nidextract - NID card field extraction")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
