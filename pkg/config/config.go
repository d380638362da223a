package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// TrainConfig holds the configuration for the demo training loop. The
// autodiff core itself takes no configuration; everything here feeds the
// external loop (seed, step size, schedule, model shape).
type TrainConfig struct {
	Seed         int64
	LearningRate float64
	Epochs       int
	Hidden       []int
}

// Load loads the training configuration from environment variables.
// It attempts to find a .env file in the current or parent directories.
func Load() (*TrainConfig, error) {
	// Try to load .env from current or parent directories
	_ = loadEnvFile()

	cfg := &TrainConfig{
		Seed:         42,
		LearningRate: 0.05,
		Epochs:       20,
		Hidden:       []int{4, 4, 1},
	}

	if s := os.Getenv("MICROGRAD_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MICROGRAD_SEED %q: %w", s, err)
		}
		cfg.Seed = seed
	}

	if s := os.Getenv("MICROGRAD_LEARNING_RATE"); s != "" {
		lr, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MICROGRAD_LEARNING_RATE %q: %w", s, err)
		}
		cfg.LearningRate = lr
	}

	if s := os.Getenv("MICROGRAD_EPOCHS"); s != "" {
		epochs, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid MICROGRAD_EPOCHS %q: %w", s, err)
		}
		cfg.Epochs = epochs
	}

	if s := os.Getenv("MICROGRAD_HIDDEN"); s != "" {
		hidden, err := parseSizes(s)
		if err != nil {
			return nil, fmt.Errorf("invalid MICROGRAD_HIDDEN %q: %w", s, err)
		}
		cfg.Hidden = hidden
	}

	return cfg, nil
}

// parseSizes parses a comma-separated list of layer sizes, e.g. "4,4,1".
func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("layer size must be positive, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// loadEnvFile attempts to look up until it finds a .env file
func loadEnvFile() error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	// Look up to 5 levels
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return godotenv.Load(envPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return nil
}
