package awssm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// Provider fetches secrets from AWS Secrets Manager.
type Provider struct {
	cfg    Config
	logger logger.Logger

	mu     sync.Mutex
	client Client
}

var _ secrets.Provider = (*Provider)(nil)

// Config holds Secrets Manager settings.
type Config struct {
	Region  string `mapstructure:"region" json:"region"`
	Profile string `mapstructure:"profile" json:"profile"`
	// Prefix is prepended to every secret name, e.g. "gamesync/".
	Prefix       string `mapstructure:"prefix" json:"prefix"`
	VersionStage string `mapstructure:"version_stage" json:"version_stage"`
}

type Option func(*Provider)

// Client abstracts the Secrets Manager client for testing.
type Client interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// WithConfig sets the provider configuration.
func WithConfig(cfg Config) Option {
	return func(p *Provider) {
		p.cfg = cfg
	}
}

// WithClient injects a custom Secrets Manager client.
func WithClient(c Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// New constructs the provider. The AWS client is created on first Fetch.
func New(l logger.Logger, opts ...Option) *Provider {
	p := &Provider{
		cfg:    Config{Region: "us-east-1"},
		logger: logger.OrNop(l),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Provider) ensureClient(ctx context.Context) (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(firstNonEmpty(p.cfg.Region, "us-east-1")),
	}
	if p.cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(p.cfg.Profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("awssm: load config: %w", err)
	}
	p.client = secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		o.RetryMaxAttempts = 3
	})
	return p.client, nil
}

// Fetch returns the SecretString (or SecretBinary) stored under name.
func (p *Provider) Fetch(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", secrets.ErrInvalidName
	}
	client, err := p.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.cfg.Prefix + name),
	}
	if p.cfg.VersionStage != "" {
		input.VersionStage = aws.String(p.cfg.VersionStage)
	}
	out, err := client.GetSecretValue(ctx, input)
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", secrets.ErrNotFound
		}
		p.logger.Warn("awssm: get secret failed", logger.F("secret_name", name), logger.Err(err))
		return "", fmt.Errorf("awssm: get %s: %w", name, err)
	}
	if value := aws.ToString(out.SecretString); value != "" {
		return value, nil
	}
	if len(out.SecretBinary) > 0 {
		return string(out.SecretBinary), nil
	}
	return "", secrets.ErrEmptyValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
