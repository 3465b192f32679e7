package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/zoobzio/redact/s3"
)

// Defaults for the object locations.
const (
	DefaultBucket    = "users"
	DefaultSourceKey = "rand_users100.json"
	DefaultTargetKey = "users_secure.parquet"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// Store holds the object store endpoint and credentials.
	Store Store

	// Encryption holds the footer key used for the output file.
	Encryption Encryption

	// Source is the input object.
	// Env: SOURCE_BUCKET, SOURCE_KEY
	Source Object `envPrefix:"SOURCE_"`

	// Target is the output object.
	// Env: TARGET_BUCKET, TARGET_KEY
	Target Object `envPrefix:"TARGET_"`

	// Verify reads the written file back with and without the key.
	// Env: PIPELINE_VERIFY
	Verify bool `env:"PIPELINE_VERIFY" envDefault:"true"`
}

// Store holds object store settings.
type Store struct {
	// Env: MINIO_ROOT_USER
	AccessKeyID string `env:"MINIO_ROOT_USER"`
	// Env: MINIO_ROOT_PASSWORD
	SecretAccessKey string `env:"MINIO_ROOT_PASSWORD"`
	// Endpoint is host:port or a URL.
	// Env: S3_ENDPOINT
	Endpoint string `env:"S3_ENDPOINT" envDefault:"minio:9000"`
	// Env: S3_REGION
	Region string `env:"S3_REGION" envDefault:"us-east-1"`
	// Env: S3_PATH_STYLE
	PathStyle bool `env:"S3_PATH_STYLE" envDefault:"true"`
	// Env: S3_USE_SSL
	UseSSL bool `env:"S3_USE_SSL" envDefault:"true"`
}

// Encryption holds the footer key settings.
type Encryption struct {
	// Key is 16, 24 or 32 raw bytes, or base64 text for the same.
	// Env: PARQUET_ENCRYPTION_KEY
	Key string `env:"PARQUET_ENCRYPTION_KEY"`
	// KeyName is recorded in the file footer.
	// Env: PARQUET_KEY_NAME
	KeyName string `env:"PARQUET_KEY_NAME" envDefault:"key128"`
}

// Object is a bucket and key pair.
type Object struct {
	Bucket string `env:"BUCKET"`
	Key    string `env:"KEY"`
}

func (o Object) String() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// S3 returns the client settings for the store.
func (s Store) S3() s3.Config {
	return s3.Config{
		Endpoint:        s.Endpoint,
		Region:          s.Region,
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		UseSSL:          s.UseSSL,
		PathStyle:       s.PathStyle,
	}
}

// defaults returns a Config with the object locations filled in. Fields
// already set are kept by env when the variable is absent.
func defaults() Config {
	return Config{
		Source: Object{Bucket: DefaultBucket, Key: DefaultSourceKey},
		Target: Object{Bucket: DefaultBucket, Key: DefaultTargetKey},
	}
}

// Load reads the configuration from the process environment and validates
// it.
func Load() (*Config, error) {
	cfg := defaults()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom is Load over an explicit environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := defaults()
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Store.AccessKeyID == "" || c.Store.SecretAccessKey == "" {
		return fmt.Errorf("%w: MINIO_ROOT_USER and MINIO_ROOT_PASSWORD are required", ErrInvalidStoreConfig)
	}
	if c.Store.Region == "" {
		return fmt.Errorf("%w: S3_REGION is empty", ErrInvalidStoreConfig)
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("%w: PARQUET_ENCRYPTION_KEY is required", ErrInvalidEncryptionConfig)
	}
	if c.Encryption.KeyName == "" {
		return fmt.Errorf("%w: PARQUET_KEY_NAME is empty", ErrInvalidEncryptionConfig)
	}
	for _, o := range []Object{c.Source, c.Target} {
		if o.Bucket == "" || o.Key == "" {
			return fmt.Errorf("%w: %s", ErrInvalidObjectConfig, o)
		}
	}
	return nil
}
