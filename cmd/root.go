package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "Face identity matching and encoding store service",
	Long: `Facegate registers face encodings under identity names and matches
query faces against the registered gallery. It runs the face service,
the retrieval-augmented chat engine, and gallery management commands.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	logging.Setup()
}
