package valkey

import "time"

type Config struct {
	Addresses []string      `mapstructure:"addresses" validate:"omitempty,dive,hostname_port"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	AlertTTL  time.Duration `mapstructure:"alert_ttl" default:"24h"`
}

func (c Config) Enabled() bool {
	return len(c.Addresses) > 0
}
