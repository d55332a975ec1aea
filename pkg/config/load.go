package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-config/cfgx"
	"github.com/goliatone/go-gamesync/pkg/options"
	opts "github.com/goliatone/go-options"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GAMESYNC_"

// Scopes, lowest precedence first.
var (
	ScopeDefaults    = opts.NewScope("defaults", opts.ScopePrioritySystem, opts.WithScopeLabel("Hardcoded defaults"))
	ScopeEnvironment = opts.NewScope("environment", opts.ScopePriorityTenant, opts.WithScopeLabel("Environment"))
	ScopeExplicit    = opts.NewScope("explicit", opts.ScopePriorityUser, opts.WithScopeLabel("Explicit override"))
)

// Load builds the configuration from defaults, then the environment, then
// input (struct, map or *Config), and validates the result.
func Load(input any, loadOpts ...LoadOption) (Config, error) {
	cfg, _, err := Resolve(input, loadOpts...)
	return cfg, err
}

// Resolve is Load that also returns the layered resolver, so callers can
// trace where a value came from.
func Resolve(input any, loadOpts ...LoadOption) (Config, *options.Resolver, error) {
	settings := loadOptions{environ: os.Environ}
	for _, opt := range loadOpts {
		if opt != nil {
			opt(&settings)
		}
	}

	defaults, err := toMap(Defaults(), false)
	if err != nil {
		return Config{}, nil, err
	}
	snapshots := []options.Snapshot{{Scope: ScopeDefaults, Data: defaults}}

	if !settings.skipEnv {
		envCfg, err := fromEnvironment(settings.environment())
		if err != nil {
			return Config{}, nil, err
		}
		envLayer, err := toMap(envCfg, true)
		if err != nil {
			return Config{}, nil, err
		}
		snapshots = append(snapshots, options.Snapshot{Scope: ScopeEnvironment, Data: envLayer})
	}

	explicit, err := buildExplicit(input, settings.buildOpts)
	if err != nil {
		return Config{}, nil, err
	}
	explicitLayer, err := toMap(explicit, true)
	if err != nil {
		return Config{}, nil, err
	}
	snapshots = append(snapshots, options.Snapshot{Scope: ScopeExplicit, Data: explicitLayer})

	resolver, err := options.NewResolver(snapshots...)
	if err != nil {
		return Config{}, nil, err
	}
	var cfg Config
	if err := fromMap(resolver.Values(), &cfg); err != nil {
		return Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, resolver, nil
}

// LoadOption lets callers amend how configuration is loaded.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
	environ   func() []string
	env       map[string]string
	skipEnv   bool
}

func (lo loadOptions) environment() map[string]string {
	if lo.env != nil {
		return lo.env
	}
	out := map[string]string{}
	for _, kv := range lo.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(o ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, o...)
	}
}

// WithEnvironment replaces the process environment.
func WithEnvironment(vars map[string]string) LoadOption {
	return func(lo *loadOptions) {
		lo.env = vars
	}
}

// WithoutEnvironment skips the environment layer.
func WithoutEnvironment() LoadOption {
	return func(lo *loadOptions) {
		lo.skipEnv = true
	}
}

func fromEnvironment(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}
	return cfg, nil
}

// buildExplicit decodes input with cfgx. While cfgx.Build still returns zero
// values for map input, a lightweight JSON decoder fills in.
func buildExplicit(input any, buildOpts []cfgx.Option[Config]) (Config, error) {
	if input == nil {
		return Config{}, nil
	}
	if m, ok := input.(map[string]any); ok {
		input = normalizeDurations(m)
	}
	cfg, err := cfgx.Build(input, buildOpts...)
	if err != nil {
		return Config{}, err
	}
	if !reflect.DeepEqual(cfg, Config{}) {
		return cfg, nil
	}
	switch v := input.(type) {
	case Config:
		return v, nil
	case *Config:
		if v != nil {
			return *v, nil
		}
		return Config{}, nil
	case map[string]any:
		var out Config
		if err := fromMap(v, &out); err != nil {
			return Config{}, err
		}
		return out, nil
	default:
		return Config{}, fmt.Errorf("unsupported config input type: %T", input)
	}
}

func toMap(cfg Config, prune bool) (map[string]any, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if prune {
		pruneEmpty(out)
	}
	return out, nil
}

func fromMap(input map[string]any, cfg *Config) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}

// pruneEmpty drops nested maps left empty by omitempty so they do not mask
// lower layers.
func pruneEmpty(m map[string]any) {
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			pruneEmpty(nested)
			if len(nested) == 0 {
				delete(m, k)
			}
		}
	}
}

// normalizeDurations converts duration strings ("30s") found under
// *_timeout, *_ttl and *_interval keys into nanoseconds.
func normalizeDurations(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch value := v.(type) {
		case map[string]any:
			out[k] = normalizeDurations(value)
		case string:
			if isDurationKey(k) {
				if d, err := time.ParseDuration(value); err == nil {
					out[k] = int64(d)
					continue
				}
			}
			out[k] = value
		default:
			out[k] = v
		}
	}
	return out
}

func isDurationKey(key string) bool {
	for _, suffix := range []string{"timeout", "_ttl", "_interval"} {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
