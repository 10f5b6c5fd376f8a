package config

// Default returns the configuration defaults applied before a config file is parsed.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:     "~/postbeat/input",
			ProcessedDir: "~/postbeat/processed",
			LogDir:       "~/.local/share/postbeat/logs",
		},
		Meta: Meta{
			BaseURL:         "https://graph.facebook.com/v21.0",
			UploadBaseURL:   "https://rupload.facebook.com/video-upload/v21.0",
			RequestTimeout:  60,
			PollInterval:    10,
			PollMaxAttempts: 30,
		},
		Platforms: Platforms{
			IGEnabled:   true,
			IGPostReel:  true,
			IGPostStory: true,
			FBEnabled:   true,
			FBPostReel:  true,
			FBPostFeed:  true,
		},
		Storage: Storage{
			Enabled:    false,
			Region:     "auto",
			KeyPrefix:  "reels",
			URLTTLDays: 7,
		},
		Schedule: Schedule{
			Times:        []string{"18:00", "20:00"},
			Timezone:     "Asia/Kolkata",
			GraceSeconds: 3600,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
