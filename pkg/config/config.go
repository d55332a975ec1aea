package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Config captures module-level configuration. Feature packages (clients,
// game, worker) pull from these nested structs.
type Config struct {
	App       AppConfig       `mapstructure:"app" json:"app" envPrefix:"APP_"`
	Secrets   SecretsConfig   `mapstructure:"secrets" json:"secrets" envPrefix:"SECRETS_"`
	Storage   StorageConfig   `mapstructure:"storage" json:"storage" envPrefix:"STORAGE_"`
	Blob      BlobConfig      `mapstructure:"blob" json:"blob" envPrefix:"BLOB_"`
	Documents DocumentsConfig `mapstructure:"documents" json:"documents" envPrefix:"DOCUMENTS_"`
	Queue     QueueConfig     `mapstructure:"queue" json:"queue" envPrefix:"QUEUE_"`
	Identity  IdentityConfig  `mapstructure:"identity" json:"identity" envPrefix:"IDENTITY_"`
	Game      GameConfig      `mapstructure:"game" json:"game" envPrefix:"GAME_"`
	Worker    WorkerConfig    `mapstructure:"worker" json:"worker" envPrefix:"WORKER_"`
	Timeouts  TimeoutConfig   `mapstructure:"timeouts" json:"timeouts" envPrefix:"TIMEOUTS_"`
}

// AppConfig holds presentation defaults.
type AppConfig struct {
	Locale            string `mapstructure:"locale" json:"locale,omitempty" env:"LOCALE"`
	AvatarPlaceholder string `mapstructure:"avatar_placeholder" json:"avatar_placeholder,omitempty" env:"AVATAR_PLACEHOLDER"`
	AvatarMaxBytes    int    `mapstructure:"avatar_max_bytes" json:"avatar_max_bytes,omitempty" env:"AVATAR_MAX_BYTES"`
	LogLevel          string `mapstructure:"log_level" json:"log_level,omitempty" env:"LOG_LEVEL"`
}

// SecretsConfig selects the secret provider chain.
type SecretsConfig struct {
	// Providers are consulted in order: env, encrypted, aws, static.
	Providers []string      `mapstructure:"providers" json:"providers,omitempty" env:"PROVIDERS" envSeparator:","`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" json:"cache_ttl,omitempty" env:"CACHE_TTL"`
	EnvPrefix string        `mapstructure:"env_prefix" json:"env_prefix,omitempty" env:"ENV_PREFIX"`
	FilesDir  string        `mapstructure:"files_dir" json:"files_dir,omitempty" env:"FILES_DIR"`
	// MasterKey encrypts secrets kept by the encrypted store.
	MasterKey string `mapstructure:"master_key" json:"master_key,omitempty" env:"MASTER_KEY"`
	AWSRegion string `mapstructure:"aws_region" json:"aws_region,omitempty" env:"AWS_REGION"`
	AWSPrefix string `mapstructure:"aws_prefix" json:"aws_prefix,omitempty" env:"AWS_PREFIX"`
}

// StorageConfig selects the persistence backend by DSN scheme:
// memory://, sqlite:// (or file:), redis://.
type StorageConfig struct {
	DSN         string `mapstructure:"dsn" json:"dsn,omitempty" env:"DSN"`
	RedisPrefix string `mapstructure:"redis_prefix" json:"redis_prefix,omitempty" env:"REDIS_PREFIX"`
}

// BlobConfig configures avatar storage.
type BlobConfig struct {
	Account     string `mapstructure:"account" json:"account,omitempty" env:"ACCOUNT"`
	Container   string `mapstructure:"container" json:"container,omitempty" env:"CONTAINER"`
	CDNEndpoint string `mapstructure:"cdn_endpoint" json:"cdn_endpoint,omitempty" env:"CDN_ENDPOINT"`
	Credential  string `mapstructure:"credential" json:"credential,omitempty" env:"CREDENTIAL"`
	// BaseURL is the afs location objects are written under, e.g. file:///var/avatars.
	BaseURL string `mapstructure:"base_url" json:"base_url,omitempty" env:"BASE_URL"`
}

// DocumentsConfig configures the player document store client.
type DocumentsConfig struct {
	ConnectionString string `mapstructure:"connection_string" json:"connection_string,omitempty" env:"CONNECTION_STRING"`
	Endpoint         string `mapstructure:"endpoint" json:"endpoint,omitempty" env:"ENDPOINT"`
	Key              string `mapstructure:"key" json:"key,omitempty" env:"KEY"`
	Database         string `mapstructure:"database" json:"database,omitempty" env:"DATABASE"`
	Collection       string `mapstructure:"collection" json:"collection,omitempty" env:"COLLECTION"`
}

// QueueConfig configures the player data queue client.
type QueueConfig struct {
	Credential string `mapstructure:"credential" json:"credential,omitempty" env:"CREDENTIAL"`
	Name       string `mapstructure:"name" json:"name,omitempty" env:"NAME"`
}

// IdentityConfig configures the identity client.
type IdentityConfig struct {
	// Backend is "local" (in-process accounts) or "rpc" (JSON-RPC endpoint).
	Backend    string `mapstructure:"backend" json:"backend,omitempty" env:"BACKEND"`
	Endpoint   string `mapstructure:"endpoint" json:"endpoint,omitempty" env:"ENDPOINT"`
	TitleID    string `mapstructure:"title_id" json:"title_id,omitempty" env:"TITLE_ID"`
	Credential string `mapstructure:"credential" json:"credential,omitempty" env:"CREDENTIAL"`
}

// GameConfig tunes the synchronizer.
type GameConfig struct {
	AutoSave bool `mapstructure:"auto_save" json:"auto_save,omitempty" env:"AUTO_SAVE"`
}

// WorkerConfig tunes the player data worker.
type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency" json:"concurrency,omitempty" env:"CONCURRENCY"`
	Attempts     int           `mapstructure:"attempts" json:"attempts,omitempty" env:"ATTEMPTS"`
	PollInterval time.Duration `mapstructure:"poll_interval" json:"poll_interval,omitempty" env:"POLL_INTERVAL"`
}

// TimeoutConfig bounds outbound calls.
type TimeoutConfig struct {
	Call time.Duration `mapstructure:"call_timeout" json:"call_timeout,omitempty" env:"CALL"`
}

var (
	knownProviders       = []string{"env", "encrypted", "aws", "static"}
	knownIdentityBackend = []string{"local", "rpc"}
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Locale:            "en",
			AvatarPlaceholder: "/assets/avatar-placeholder.png",
			AvatarMaxBytes:    2 * 1024 * 1024,
			LogLevel:          "info",
		},
		Secrets: SecretsConfig{
			Providers: []string{"env"},
			CacheTTL:  time.Hour,
			EnvPrefix: "GAMESYNC_SECRET_",
		},
		Storage: StorageConfig{
			DSN:         "memory://",
			RedisPrefix: "gamesync:",
		},
		Blob: BlobConfig{
			Account:   "blob.localhost",
			Container: "avatars",
		},
		Documents: DocumentsConfig{
			Database:   "gamedata",
			Collection: "players",
		},
		Queue: QueueConfig{
			Name: "player-data",
		},
		Identity: IdentityConfig{
			Backend: "local",
		},
		Worker: WorkerConfig{
			Concurrency:  4,
			Attempts:     3,
			PollInterval: 5 * time.Second,
		},
		Timeouts: TimeoutConfig{
			Call: 10 * time.Second,
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.App.Locale == "" {
		return errors.New("app.locale is required")
	}
	if c.App.AvatarMaxBytes <= 0 || c.App.AvatarMaxBytes > 2*1024*1024 {
		return fmt.Errorf("app.avatar_max_bytes must be within 1..%d", 2*1024*1024)
	}
	for _, p := range c.Secrets.Providers {
		if !slices.Contains(knownProviders, p) {
			return fmt.Errorf("secrets.providers: unknown provider %q", p)
		}
	}
	if c.Secrets.CacheTTL < 0 {
		return errors.New("secrets.cache_ttl must be >= 0")
	}
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn is required")
	}
	if !slices.Contains(knownIdentityBackend, c.Identity.Backend) {
		return fmt.Errorf("identity.backend: unknown backend %q", c.Identity.Backend)
	}
	if c.Identity.Backend == "rpc" && c.Identity.Endpoint == "" {
		return errors.New("identity.endpoint is required for the rpc backend")
	}
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be > 0")
	}
	if c.Worker.Attempts <= 0 {
		return errors.New("worker.attempts must be > 0")
	}
	if c.Worker.PollInterval < 0 || c.Timeouts.Call < 0 {
		return errors.New("durations must be >= 0")
	}
	return nil
}
