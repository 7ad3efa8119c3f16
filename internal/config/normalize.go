package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtractor()
	c.normalizeBlobStore()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MEDIAVAULT_API_TOKEN"); ok {
			c.Paths.APIToken = value
		}
	}
	return nil
}

func (c *Config) normalizeExtractor() {
	if c.Extractor.RemoteAPIKey == "" {
		if value, ok := os.LookupEnv("MEDIAVAULT_EXTRACTOR_KEY"); ok {
			c.Extractor.RemoteAPIKey = value
		}
	}
	c.Extractor.RemoteAPIURL = strings.TrimSpace(c.Extractor.RemoteAPIURL)
	if strings.TrimSpace(c.Extractor.YtdlpBinary) == "" {
		c.Extractor.YtdlpBinary = defaultYtdlpBinary
	}
	if c.Extractor.TimeoutSeconds <= 0 {
		c.Extractor.TimeoutSeconds = defaultExtractorTimeout
	}
	if strings.TrimSpace(c.Extractor.AudioFormat) == "" {
		c.Extractor.AudioFormat = defaultAudioFormat
	}
	if strings.TrimSpace(c.Extractor.VideoFormat) == "" {
		c.Extractor.VideoFormat = defaultVideoFormat
	}
}

func (c *Config) normalizeBlobStore() {
	if c.BlobStore.URL == "" {
		if value, ok := os.LookupEnv("MEDIAVAULT_NATS_URL"); ok {
			c.BlobStore.URL = value
		}
	}
	c.BlobStore.URL = strings.TrimSpace(c.BlobStore.URL)
	if c.BlobStore.URL == "" {
		c.BlobStore.URL = defaultBlobStoreURL
	}
	if strings.TrimSpace(c.BlobStore.Bucket) == "" {
		c.BlobStore.Bucket = defaultBlobStoreBucket
	}
	if strings.TrimSpace(c.BlobStore.Subject) == "" {
		c.BlobStore.Subject = defaultBlobStoreSubject
	}
	if c.BlobStore.TimeoutSeconds <= 0 {
		c.BlobStore.TimeoutSeconds = defaultBlobStoreTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
