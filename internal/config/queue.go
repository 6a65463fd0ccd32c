package config

import (
	"fmt"
	"time"
)

type QueueConfig struct {
	// Url is the AMQP endpoint of the broker carrying bridge messages.
	Url string `mapstructure:"url"`
	// QueuePrefix prefixes the per-chain-selector queue names.
	QueuePrefix    string        `mapstructure:"queue-prefix"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
	// PublishAttempts bounds publish retries before giving up.
	PublishAttempts uint `mapstructure:"publish-attempts"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("queue url is required")
	}
	if cfg.QueuePrefix == "" {
		return fmt.Errorf("queue prefix is required")
	}
	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("queue publish-timeout must be positive")
	}
	if cfg.PublishAttempts == 0 {
		return fmt.Errorf("queue publish-attempts must be positive")
	}
	return nil
}
