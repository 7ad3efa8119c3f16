package config

const (
	defaultStagingDir = "~/.local/share/mediavault/staging"
	defaultDataDir    = "~/.local/share/mediavault/data"
	defaultLogDir     = "~/.local/share/mediavault/logs"
	defaultAPIBind    = "127.0.0.1:7848"

	defaultHighSimilarityThreshold = 0.9
	defaultLowSimilarityThreshold  = 0.7
	defaultMinKeywordMatches       = 2

	defaultMaxRecordAgeDays   = 30
	defaultSweepIntervalHours = 24

	defaultYtdlpBinary      = "yt-dlp"
	defaultExtractorTimeout = 60
	defaultAudioQuality     = "192k"
	defaultAudioFormat      = "mp3"
	defaultVideoFormat      = "mp4"

	defaultBlobStoreURL     = "nats://127.0.0.1:4222"
	defaultBlobStoreBucket  = "mediavault-artifacts"
	defaultBlobStoreSubject = "mediavault.artifacts"
	defaultBlobStoreTimeout = 30

	defaultNtfyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Matching: Matching{
			HighSimilarityThreshold: defaultHighSimilarityThreshold,
			LowSimilarityThreshold:  defaultLowSimilarityThreshold,
			MinKeywordMatches:       defaultMinKeywordMatches,
		},
		Retention: Retention{
			MaxRecordAgeDays:   defaultMaxRecordAgeDays,
			SweepIntervalHours: defaultSweepIntervalHours,
		},
		Extractor: Extractor{
			YtdlpBinary:    defaultYtdlpBinary,
			TimeoutSeconds: defaultExtractorTimeout,
			AudioQuality:   defaultAudioQuality,
			AudioFormat:    defaultAudioFormat,
			VideoFormat:    defaultVideoFormat,
		},
		BlobStore: BlobStore{
			// URL is resolved at normalize time: MEDIAVAULT_NATS_URL, then
			// the localhost default.
			Bucket:         defaultBlobStoreBucket,
			Subject:        defaultBlobStoreSubject,
			TimeoutSeconds: defaultBlobStoreTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Acquisition:    true,
			Sweep:          false,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

const sampleConfig = `# mediavault configuration

[paths]
# staging_dir = "~/.local/share/mediavault/staging"
# data_dir = "~/.local/share/mediavault/data"
# log_dir = "~/.local/share/mediavault/logs"
# api_bind = "127.0.0.1:7848"
# api_token = ""

[matching]
# high_similarity_threshold = 0.9
# low_similarity_threshold = 0.7
# min_keyword_matches = 2

[retention]
# max_record_age_days = 30
# sweep_interval_hours = 24

[extractor]
# remote_api_url = ""
# remote_api_key = ""
# ytdlp_binary = "yt-dlp"
# timeout_seconds = 60
# audio_quality = "192k"
# audio_format = "mp3"
# video_format = "mp4"

[blob_store]
# url = "nats://127.0.0.1:4222"
# bucket = "mediavault-artifacts"
# subject = "mediavault.artifacts"
# timeout_seconds = 30

[notifications]
# ntfy_topic = ""
# request_timeout = 10
# acquisition = true
# sweep = false
# errors = true

[logging]
# format = "console"
# level = "info"
`
