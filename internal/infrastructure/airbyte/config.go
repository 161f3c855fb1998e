package airbyte

import "fmt"

type Config struct {
	BaseUrl      string `mapstructure:"base_url" default:"https://api.airbyte.com" validate:"required,url"`
	ApiKey       string `mapstructure:"api_key"`
	ConnectionId string `mapstructure:"connection_id" validate:"omitempty,uuid"`
}

// Validate reports missing credentials. Only callers that trigger a sync need them.
func (c Config) Validate() error {
	if c.ApiKey == "" {
		return fmt.Errorf("airbyte api key is required")
	}
	if c.ConnectionId == "" {
		return fmt.Errorf("airbyte connection id is required")
	}
	return nil
}
