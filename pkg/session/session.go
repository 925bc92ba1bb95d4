// Package session builds the DynamoDB client the transports talk to
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// configLoadFunc is a variable to allow mocking config.LoadDefaultConfig in tests
var configLoadFunc = config.LoadDefaultConfig

// Config holds the connection settings for DynamoDB. MaxRetries is the
// SDK-level retry budget for throttled or failed calls and is independent of
// the batch engine's unprocessed-item retries.
type Config struct {
	CredentialsProvider aws.CredentialsProvider           `yaml:"-"`
	Region              string                            `yaml:"region"`
	Endpoint            string                            `yaml:"endpoint"`
	AccessKeyID         string                            `yaml:"access_key_id"`
	SecretAccessKey     string                            `yaml:"secret_access_key"`
	SessionToken        string                            `yaml:"session_token"`
	AWSConfigOptions    []func(*config.LoadOptions) error `yaml:"-"`
	DynamoDBOptions     []func(*dynamodb.Options)         `yaml:"-"`
	MaxRetries          int                               `yaml:"max_retries"`
	Timeout             time.Duration                     `yaml:"timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Region:     "us-east-1",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
	}
}

// Session manages the AWS config and DynamoDB client
type Session struct {
	config    *Config
	client    *dynamodb.Client
	awsConfig aws.Config
}

// NewSession loads the AWS config and creates the DynamoDB client
func NewSession(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	options := make([]func(*config.LoadOptions) error, 0, len(cfg.AWSConfigOptions)+5)
	if cfg.Region != "" {
		options = append(options, config.WithRegion(cfg.Region))
	}

	switch {
	case cfg.CredentialsProvider != nil:
		options = append(options, config.WithCredentialsProvider(cfg.CredentialsProvider))
	case cfg.AccessKeyID != "":
		if cfg.SecretAccessKey == "" {
			return nil, fmt.Errorf("secret access key is required when an access key id is set")
		}
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	maxAttempts := cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	options = append(options, config.WithRetryMode(aws.RetryModeStandard))
	options = append(options, config.WithRetryMaxAttempts(maxAttempts))

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	options = append(options, config.WithHTTPClient(httpClient))
	options = append(options, cfg.AWSConfigOptions...)

	awsConfig, err := configLoadFunc(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsConfig.Retryer == nil {
		awsConfig.Retryer = func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = maxAttempts
			})
		}
	}

	clientOptions := make([]func(*dynamodb.Options), 0, 1+len(cfg.DynamoDBOptions))
	clientOptions = append(clientOptions, func(o *dynamodb.Options) {
		o.Region = awsConfig.Region
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if o.Retryer == nil {
			o.Retryer = awsConfig.Retryer()
		}
		if o.HTTPClient == nil {
			o.HTTPClient = httpClient
		}
	})
	clientOptions = append(clientOptions, cfg.DynamoDBOptions...)

	return &Session{
		config:    cfg,
		awsConfig: awsConfig,
		client:    dynamodb.NewFromConfig(awsConfig, clientOptions...),
	}, nil
}

// Client returns the DynamoDB client
func (s *Session) Client() (*dynamodb.Client, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if s.client == nil {
		return nil, fmt.Errorf("DynamoDB client is nil")
	}
	return s.client, nil
}

// Config returns the session configuration
func (s *Session) Config() *Config {
	return s.config
}

// AWSConfig returns the AWS configuration
func (s *Session) AWSConfig() aws.Config {
	return s.awsConfig
}
