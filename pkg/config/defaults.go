package config

// DefaultUserAgent is the browser identity the archive expects.
const DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:74.0) Gecko/20100101 Firefox/74.0"

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "console",
		SiteURL:   "https://radiocut.fm",
		HTTP: HTTP{
			UserAgent:              DefaultUserAgent,
			ManifestTimeoutSeconds: 30,
			ChunkTimeoutSeconds:    120,
			PageTimeoutSeconds:     30,
		},
		Engine: Engine{
			MaxManifestPages:      12,
			DownloadWorkers:       4,
			DownloadAttempts:      3,
			RequestTimeoutSeconds: 3600,
		},
		Podcast: Podcast{
			BorderMinutes: 3,
		},
		History: History{
			Backend:         HistoryBackendFile,
			MongoDatabase:   "radiocut",
			MongoCollection: "history",
		},
	}
}
