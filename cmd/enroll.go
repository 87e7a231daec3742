package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/notify"
	"github.com/facegate/facegate/internal/service"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <folder-path>",
	Short: "Batch-register faces from a folder",
	Long: `Register every image in a folder. The identity name is derived from
the file name: "jan_novak.jpg" registers as "jan novak".
Supported formats: jpg, jpeg, png, gif, webp

Example:
  facegate enroll /path/to/portraits
  facegate enroll --concurrency 8 /path/to/portraits`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().Int("concurrency", 4, "Number of parallel registrations")
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	return supported[ext]
}

// identityFromFileName derives an identity name from a file name
func identityFromFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}

func runEnroll(cmd *cobra.Command, args []string) error {
	folderPath := args[0]
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	cfg := config.Load()

	info, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("cannot access folder %s: %w", folderPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folderPath)
	}

	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return fmt.Errorf("cannot read folder %s: %w", folderPath, err)
	}

	var filePaths []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
	}

	if len(filePaths) == 0 {
		fmt.Println("No image files found in the folder.")
		return nil
	}

	fmt.Printf("Found %d image(s) to enroll\n\n", len(filePaths))

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
	svc := service.New(store, encoder, publisher, nil, cfg.Encoder.MaxSize)

	bar := progressbar.NewOptions(len(filePaths),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount int
	var failures []string
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, filePath := range filePaths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			fileName := filepath.Base(path)
			name := identityFromFileName(fileName)

			data, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", fileName, err))
				mu.Unlock()
				return
			}

			payload := base64.StdEncoding.EncodeToString(data)
			if _, err := svc.Register(cmd.Context(), name, payload); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", fileName, err))
				mu.Unlock()
				return
			}

			mu.Lock()
			successCount++
			mu.Unlock()
		}(filePath)
	}
	wg.Wait()
	fmt.Println()

	for _, msg := range failures {
		fmt.Printf("Failed: %s\n", msg)
	}
	fmt.Printf("\nEnrolled %d of %d faces\n", successCount, len(filePaths))

	if len(failures) > 0 {
		return fmt.Errorf("%d enrollment(s) failed", len(failures))
	}
	return nil
}
