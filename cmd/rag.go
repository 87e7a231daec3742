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
	"github.com/facegate/facegate/internal/rag"
)

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Start the chat engine server",
	Long: `Start the retrieval-augmented chat engine.
Documents from the docs directory are indexed at startup, registration
events posted by the face service are appended to the index, and the
chat endpoints answer questions against it.`,
	RunE: runRag,
}

func init() {
	rootCmd.AddCommand(ragCmd)

	ragCmd.Flags().Int("port", 5002, "Port to listen on")
	ragCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runRag(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	ctx := cmd.Context()

	prompts, err := rag.LoadPrompts()
	if err != nil {
		return err
	}

	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAI.APIKey)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	provider, err := rag.NewProvider(ctx, cfg.RAG.Provider, cfg.OpenAI.APIKey, cfg.Gemini.APIKey, prompts.Chat.Temperature)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	fmt.Printf("Using chat provider %s\n", provider.Name())

	store := rag.NewVectorStore(embedder)
	if err := store.LoadDocuments(ctx, cfg.RAG.DocsDir); err != nil {
		return fmt.Errorf("indexing documents: %w", err)
	}

	engine := rag.NewEngine(store, provider, prompts)
	server := rag.NewServer(engine, host, port)

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

	fmt.Printf("Starting chat engine on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
