package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateBlobStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.HighSimilarityThreshold < 0 || c.Matching.HighSimilarityThreshold > 1 {
		return errors.New("matching.high_similarity_threshold must be between 0 and 1")
	}
	if c.Matching.LowSimilarityThreshold < 0 || c.Matching.LowSimilarityThreshold > 1 {
		return errors.New("matching.low_similarity_threshold must be between 0 and 1")
	}
	if c.Matching.LowSimilarityThreshold > c.Matching.HighSimilarityThreshold {
		return errors.New("matching.low_similarity_threshold must not exceed matching.high_similarity_threshold")
	}
	if c.Matching.MinKeywordMatches < 1 {
		return errors.New("matching.min_keyword_matches must be at least 1")
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.MaxRecordAgeDays < 1 {
		return errors.New("retention.max_record_age_days must be at least 1")
	}
	if c.Retention.SweepIntervalHours < 1 {
		return errors.New("retention.sweep_interval_hours must be at least 1")
	}
	return nil
}

func (c *Config) validateExtractor() error {
	if c.Extractor.TimeoutSeconds < 1 {
		return errors.New("extractor.timeout_seconds must be at least 1")
	}
	if c.Extractor.YtdlpBinary == "" && c.Extractor.RemoteAPIURL == "" {
		return errors.New("extractor requires ytdlp_binary or remote_api_url")
	}
	return nil
}

func (c *Config) validateBlobStore() error {
	if c.BlobStore.URL == "" {
		return errors.New("blob_store.url must be set")
	}
	if c.BlobStore.Bucket == "" {
		return errors.New("blob_store.bucket must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
