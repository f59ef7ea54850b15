package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port int `env:"SERVER_PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Database configuration
	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/valora.db"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of units to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Buffer size of the import queue, in batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"50"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// Notifier configuration for Telegram study notifications
	Notifier struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	// Digest configuration for the daily inventory summary
	Digest struct {
		// Hour of day (0-23) at which the digest job runs
		Hour int `env:"DIGEST_HOUR" envDefault:"7"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
