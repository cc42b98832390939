package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML overlay. Only the keys present in the file
// override what the environment and defaults produced.
type FileConfig struct {
	Environment    *string `yaml:"environment"`
	LogLevel       *string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	HTTPTimeout    *string `yaml:"http_timeout"`
	MaxRetries     *int    `yaml:"max_retries" validate:"omitempty,min=-1"`
	Threshold      *int    `yaml:"threshold" validate:"omitempty,min=0,max=100"`
	PrefixPattern  *string `yaml:"prefix_pattern"`
	FoldDiacritics *bool   `yaml:"fold_diacritics"`
	UTMZone        *int    `yaml:"utm_zone" validate:"omitempty,min=1,max=60"`
	UTMSouth       *bool   `yaml:"utm_south"`
	CacheSize      *int    `yaml:"cache_size" validate:"omitempty,min=0"`
	IDPrefix       *string `yaml:"station_id_prefix" validate:"omitempty,min=1"`
	OutputPrefix   *string `yaml:"output_prefix"`
	Dynamo         *struct {
		Table    string `yaml:"table" validate:"required"`
		Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	} `yaml:"dynamodb"`
	S3Endpoint *string `yaml:"s3_endpoint" validate:"omitempty,url"`
}

// LoadFile reads and validates a YAML config file
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes and validates YAML config bytes
func ParseFile(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	v := validator.New()
	if err := v.Struct(fc); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	if fc.HTTPTimeout != nil {
		if _, err := time.ParseDuration(*fc.HTTPTimeout); err != nil {
			return nil, fmt.Errorf("validating config file: http_timeout: %w", err)
		}
	}
	return &fc, nil
}

// Options turns the keys set in the file into config options
func (fc *FileConfig) Options() []Option {
	var opts []Option
	if fc.Environment != nil {
		opts = append(opts, WithEnvironment(*fc.Environment))
	}
	if fc.LogLevel != nil {
		opts = append(opts, WithLogLevel(*fc.LogLevel))
	}
	if fc.HTTPTimeout != nil {
		if d, err := time.ParseDuration(*fc.HTTPTimeout); err == nil {
			opts = append(opts, WithHTTPTimeout(d))
		}
	}
	if fc.MaxRetries != nil {
		opts = append(opts, WithMaxRetries(*fc.MaxRetries))
	}
	if fc.Threshold != nil {
		opts = append(opts, WithSimilarityThreshold(*fc.Threshold))
	}
	if fc.PrefixPattern != nil {
		opts = append(opts, WithPrefixPattern(*fc.PrefixPattern))
	}
	if fc.FoldDiacritics != nil {
		opts = append(opts, WithFoldDiacritics(*fc.FoldDiacritics))
	}
	if fc.UTMZone != nil || fc.UTMSouth != nil {
		opts = append(opts, func(c *Config) {
			if fc.UTMZone != nil {
				c.Projection.UTMZone = *fc.UTMZone
			}
			if fc.UTMSouth != nil {
				c.Projection.South = *fc.UTMSouth
			}
		})
	}
	if fc.CacheSize != nil {
		opts = append(opts, WithProjectionCacheSize(*fc.CacheSize))
	}
	if fc.IDPrefix != nil {
		opts = append(opts, WithStationIDPrefix(*fc.IDPrefix))
	}
	if fc.OutputPrefix != nil {
		opts = append(opts, WithOutputPrefix(*fc.OutputPrefix))
	}
	if fc.Dynamo != nil {
		opts = append(opts, WithDynamo(fc.Dynamo.Table, fc.Dynamo.Endpoint))
	}
	if fc.S3Endpoint != nil {
		opts = append(opts, WithS3Endpoint(*fc.S3Endpoint))
	}
	return opts
}

// Apply overlays the file onto an existing config
func (fc *FileConfig) Apply(c *Config) {
	for _, opt := range fc.Options() {
		opt(c)
	}
}
