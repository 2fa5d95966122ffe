package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/config"
	"github.com/kozaktomas/facefinder/internal/faceapi"
	"github.com/spf13/cobra"
)

var (
	captureDir  string
	backendName string
)

var rootCmd = &cobra.Command{
	Use:   "facefinder",
	Short: "A client for a managed face-recognition backend",
	Long: `Face Finder registers faces, recognises who is on a photo and lists
everyone registered, against one of several interchangeable backends
(JAVA or PYTHON). Use it from the command line or start the web UI with serve.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&captureDir, "capture", "", "Directory to save API responses for testing")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Backend variant to use (overrides FACEFINDER_BACKEND)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// setup loads the configuration and builds the backend selector and API client.
func setup() (*config.Config, *backend.Selector, *faceapi.Client, error) {
	cfg := config.Load()
	if captureDir != "" {
		cfg.HTTP.CaptureDir = captureDir
	}

	registry := backend.NewRegistryFromConfig(cfg)
	initial, err := backend.ParseVariant(cfg.Backend.Default)
	if err != nil {
		initial = backend.DefaultVariant
	}
	selector := backend.NewSelector(registry, initial)

	if backendName != "" {
		variant, err := backend.ParseVariant(backendName)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid --backend: %w", err)
		}
		if _, err := selector.Dispatch(backend.SetBackend(variant)); err != nil {
			return nil, nil, nil, err
		}
	}

	client, err := faceapi.NewClient(cfg.HTTP)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create face API client: %w", err)
	}
	return cfg, selector, client, nil
}
