package config

import (
	"fmt"
	"path/filepath"
	"time"
)

type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	TelegramDebug bool   `envconfig:"TELEGRAM_DEBUG" default:"false"`

	APIKey             string        `envconfig:"METIS_API_KEY" required:"true"`
	APIBaseURL         string        `envconfig:"API_BASE_URL" default:"https://api.metisai.ir/openai/v1"`
	TranscriptionModel string        `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`
	SpeechModel        string        `envconfig:"SPEECH_MODEL" default:"tts-1-hd"`
	SpeechVoice        string        `envconfig:"SPEECH_VOICE" default:"alloy"`
	APITimeout         time.Duration `envconfig:"API_TIMEOUT" default:"60s"`
	DownloadTimeout    time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"30s"`

	VIPCode string `envconfig:"VIP_CODE" default:"VIP123"`

	DataDir       string `envconfig:"DATA_DIR" default:"data"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"json"`

	LogFile  string `envconfig:"LOG_FILE" default:"bot.log"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	PollTimeout int           `envconfig:"POLL_TIMEOUT" default:"30"`
	PollLimit   int           `envconfig:"POLL_LIMIT" default:"10"`
	RetryDelay  time.Duration `envconfig:"RETRY_DELAY" default:"5s"`
}

// LogPath returns the log file location, or "" when file logging is off.
func (c *Config) LogPath() string {
	if c.LogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, c.LogFile)
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return &Error{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.APIKey == "" {
		return &Error{Field: "METIS_API_KEY", Message: "required"}
	}
	switch c.StorageDriver {
	case "json", "sqlite":
	default:
		return &Error{Field: "STORAGE_DRIVER", Message: fmt.Sprintf("unsupported driver %q", c.StorageDriver)}
	}
	if c.VIPCode == "" {
		return &Error{Field: "VIP_CODE", Message: "must not be empty"}
	}
	if c.PollLimit <= 0 || c.PollLimit > 100 {
		return &Error{Field: "POLL_LIMIT", Message: "must be between 1 and 100"}
	}
	if c.PollTimeout <= 0 {
		return &Error{Field: "POLL_TIMEOUT", Message: "must be positive"}
	}
	if c.APITimeout <= 0 {
		return &Error{Field: "API_TIMEOUT", Message: "must be positive"}
	}
	if c.DownloadTimeout <= 0 {
		return &Error{Field: "DOWNLOAD_TIMEOUT", Message: "must be positive"}
	}
	if c.RetryDelay <= 0 {
		return &Error{Field: "RETRY_DELAY", Message: "must be positive"}
	}
	return nil
}

// Error represents a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}
