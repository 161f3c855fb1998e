package powerbi

import (
	"fmt"

	"github.com/google/uuid"
)

type Mode string

const (
	// ModeStub logs a placeholder status instead of calling Power BI.
	ModeStub Mode = "stub"
	ModeLive Mode = "live"
)

type Config struct {
	Mode        Mode   `mapstructure:"mode" default:"stub" validate:"oneof=stub live"`
	BaseUrl     string `mapstructure:"base_url" default:"https://api.powerbi.com" validate:"required,url"`
	GroupId     string `mapstructure:"group_id" validate:"omitempty,uuid"`
	DatasetId   string `mapstructure:"dataset_id" validate:"omitempty,uuid"`
	AccessToken string `mapstructure:"access_token"`
}

func (c Config) Validate() error {
	if c.Mode != ModeLive {
		return nil
	}
	if _, err := uuid.Parse(c.GroupId); err != nil {
		return fmt.Errorf("power bi group id: %w", err)
	}
	if _, err := uuid.Parse(c.DatasetId); err != nil {
		return fmt.Errorf("power bi dataset id: %w", err)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("power bi access token is required in live mode")
	}
	return nil
}
