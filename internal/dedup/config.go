package dedup

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the duplicate scan.
type Config struct {
	// Threshold is the minimum combined score (0.0-1.0) to report a pair.
	// Higher values = more conservative (fewer false positives).
	// Default: 0.85
	Threshold float64

	// MaxItems truncates the input working set (not the number of
	// comparisons) to bound cost on very large queues.
	// Default: 1000
	MaxItems int

	// Bucket maps an item's text to its bucket; only items sharing a bucket
	// are compared. Default: Fingerprint (16-hex hash of normalized text).
	// Replace with a coarser function to trade performance for recall.
	Bucket func(text string) string
}

// DefaultConfig returns the default scan configuration.
//
// The defaults are conservative: a high threshold keeps false duplicate
// reports out of operator view, and fingerprint bucketing keeps the scan
// tractable on queues that have gone unattended for weeks.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.85,
		MaxItems:  1000,
		Bucket:    Fingerprint,
	}
}

// Validate checks if the configuration has valid values.
func (c Config) Validate() error {
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max_items must be positive (got %d)", c.MaxItems)
	}
	if c.MaxItems > 100000 {
		return fmt.Errorf("max_items too large (got %d, max 100000)", c.MaxItems)
	}
	if c.Bucket == nil {
		return fmt.Errorf("bucket function is required")
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables, falling back to
// defaults.
//
// Environment variables:
//   - REVIEWQ_DEDUP_THRESHOLD: minimum score (0.0-1.0) to report a pair (default: 0.85)
//   - REVIEWQ_DEDUP_MAX_ITEMS: working-set cap for the scan (default: 1000)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("REVIEWQ_DEDUP_THRESHOLD", &cfg.Threshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("REVIEWQ_DEDUP_MAX_ITEMS", &cfg.MaxItems); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
