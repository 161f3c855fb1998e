package mail

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

type TransportKind string

const (
	TransportSMTP     TransportKind = "smtp"
	TransportSendGrid TransportKind = "sendgrid"
)

type Config struct {
	Transport      TransportKind `mapstructure:"transport" default:"smtp" validate:"oneof=smtp sendgrid"`
	Host           string        `mapstructure:"host" default:"smtp.gmail.com" validate:"required"`
	Port           int           `mapstructure:"port" default:"587" validate:"min=1,max=65535"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	From           string        `mapstructure:"from" validate:"omitempty,email"`
	FromName       string        `mapstructure:"from_name" default:"Pipeline Alerts"`
	To             string        `mapstructure:"to" validate:"required,email"`
	SendGridApiKey string        `mapstructure:"sendgrid_api_key"`
	Timeout        time.Duration `mapstructure:"timeout" default:"30s"`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Sender is the From address; the login user when not set explicitly.
func (c Config) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

func (c Config) Validate() error {
	switch c.Transport {
	case TransportSMTP:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("smtp transport requires username and password")
		}
	case TransportSendGrid:
		if c.SendGridApiKey == "" {
			return fmt.Errorf("sendgrid transport requires an api key")
		}
		if c.Sender() == "" {
			return fmt.Errorf("sendgrid transport requires a from address")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Transport)
	}
	return nil
}
