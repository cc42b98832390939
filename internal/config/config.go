package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProjectionConfig selects the planar projection used for centroids
type ProjectionConfig struct {
	UTMZone int
	South   bool
}

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxRetries  int

	SimilarityThreshold int
	PrefixPattern       string
	FoldDiacritics      bool
	Projection          ProjectionConfig
	ProjectionCacheSize int
	StationIDPrefix     string

	// OutputPrefix is where the Lambda writes enriched tables in the source bucket
	OutputPrefix   string
	DynamoTable    string
	DynamoEndpoint string
	S3Endpoint     string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithSimilarityThreshold sets the minimum score (0-100) for two prefixes to group
func WithSimilarityThreshold(threshold int) Option {
	return func(c *Config) {
		c.SimilarityThreshold = threshold
	}
}

// WithPrefixPattern overrides the stop name pattern; empty keeps the default
func WithPrefixPattern(pattern string) Option {
	return func(c *Config) {
		c.PrefixPattern = pattern
	}
}

func WithFoldDiacritics(fold bool) Option {
	return func(c *Config) {
		c.FoldDiacritics = fold
	}
}

// WithUTMZone selects the UTM zone; south picks the southern hemisphere variant
func WithUTMZone(zone int, south bool) Option {
	return func(c *Config) {
		c.Projection = ProjectionConfig{UTMZone: zone, South: south}
	}
}

func WithProjectionCacheSize(size int) Option {
	return func(c *Config) {
		c.ProjectionCacheSize = size
	}
}

func WithStationIDPrefix(prefix string) Option {
	return func(c *Config) {
		c.StationIDPrefix = prefix
	}
}

func WithOutputPrefix(prefix string) Option {
	return func(c *Config) {
		c.OutputPrefix = prefix
	}
}

// WithDynamo enables publishing to a DynamoDB table. A non-empty endpoint
// points the client at a local DynamoDB.
func WithDynamo(table, endpoint string) Option {
	return func(c *Config) {
		c.DynamoTable = table
		c.DynamoEndpoint = endpoint
	}
}

func WithS3Endpoint(endpoint string) Option {
	return func(c *Config) {
		c.S3Endpoint = endpoint
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:         "production",
		LogLevel:            zerolog.InfoLevel,
		HTTPTimeout:         30 * time.Second,
		MaxRetries:          3,
		SimilarityThreshold: 90,
		Projection:          ProjectionConfig{UTMZone: 29},
		ProjectionCacheSize: 4096,
		StationIDPrefix:     "PS",
		OutputPrefix:        "enriched/",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 30*time.Second)),
		WithMaxRetries(getIntEnvOrDefault("MAX_RETRIES", 3)),
		WithSimilarityThreshold(getIntEnvOrDefault("SIMILARITY_THRESHOLD", 90)),
		WithPrefixPattern(os.Getenv("PREFIX_PATTERN")),
		WithFoldDiacritics(getBoolEnvOrDefault("FOLD_DIACRITICS", false)),
		WithUTMZone(getIntEnvOrDefault("UTM_ZONE", 29), getBoolEnvOrDefault("UTM_SOUTH", false)),
		WithProjectionCacheSize(getIntEnvOrDefault("PROJECTION_CACHE_SIZE", 4096)),
		WithStationIDPrefix(getEnvOrDefault("STATION_ID_PREFIX", "PS")),
		WithOutputPrefix(getEnvOrDefault("OUTPUT_PREFIX", "enriched/")),
		WithDynamo(os.Getenv("DYNAMODB_TABLE"), os.Getenv("DYNAMODB_ENDPOINT")),
		WithS3Endpoint(os.Getenv("S3_ENDPOINT")),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return defaultValue
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
