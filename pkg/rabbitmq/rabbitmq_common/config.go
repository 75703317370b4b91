package rabbitmq_common

import (
	"fmt"
	"net/url"
)

// Config - общая часть конфигурации для потребителей и издателей
type Config struct {
	URL string
}

// Validate проверяет, что URL указан и имеет схему amqp/amqps.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rabbitmq url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid rabbitmq url: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return fmt.Errorf("unsupported rabbitmq url scheme %q", u.Scheme)
	}
	return nil
}
