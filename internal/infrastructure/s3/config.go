package s3

import (
	"fmt"
)

type Config struct {
	Url             string `mapstructure:"url" default:"http://localhost:9000" validate:"omitempty,url"`
	Region          string `mapstructure:"region" default:"us-east-1"`
	SecretAccessKey string `mapstructure:"secret_key"`
	AccessKeyId     string `mapstructure:"key_id"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix" default:"dbt-artifacts"`
	CreateBucket    bool   `mapstructure:"create_bucket"`
}

// Enabled reports whether artifact archiving is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("url is required")
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.SecretAccessKey == "" {
		return fmt.Errorf("secret access key is required")
	}
	if c.AccessKeyId == "" {
		return fmt.Errorf("access key id is required")
	}
	return nil
}
