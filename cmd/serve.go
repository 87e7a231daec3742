package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/gallery/postgres"
	"github.com/facegate/facegate/internal/notify"
	"github.com/facegate/facegate/internal/service"
	"github.com/facegate/facegate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the face service",
	Long: `Start the face registration and recognition server.
The server accepts base64 images, encodes them through the face encoding
service, and matches them against the registered gallery. Registrations
are persisted to the encodings file, or to PostgreSQL when DATABASE_URL
is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5001, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// openStore selects the gallery backend: PostgreSQL when DATABASE_URL is
// set, the JSON encodings file otherwise. The returned closer is nil for
// the file store.
func openStore(ctx context.Context, cfg *config.Config) (gallery.Store, func() error, error) {
	if cfg.Store.DatabaseURL == "" {
		fmt.Printf("Using encodings file %s\n", cfg.Store.Path)
		return gallery.NewFileStore(cfg.Store.Path), nil, nil
	}

	fmt.Println("Connecting to PostgreSQL database...")
	pool, err := postgres.NewPool(&cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Using PostgreSQL backend")
	return postgres.NewStore(pool), pool.Close, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	encoder := embedder.New(cfg.Encoder.URL, cfg.Encoder.Timeout)
	publisher := notify.NewHTTPPublisher(
		cfg.Notify.IndexerURL,
		cfg.Notify.BroadcastURL,
		cfg.Notify.IndexerTimeout,
		cfg.Notify.BroadcastTimeout,
	)
	hub := notify.NewHub()
	svc := service.New(store, encoder, publisher, hub, cfg.Encoder.MaxSize)

	server := web.NewServer(svc, hub, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting face service on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
