package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type MirrorConfig struct {
	Timeout string `mapstructure:"timeout"`
}

type ResponseConfig struct {
	DefaultStatus int    `mapstructure:"default_status"`
	DefaultBody   string `mapstructure:"default_body"`
}

type ProbeConfig struct {
	Interval string `mapstructure:"interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is resolved once at startup and shared read-only across all
// request handlers for the process lifetime.
type Config struct {
	Server       ServerConfig   `mapstructure:"server"`
	Destinations []string       `mapstructure:"destinations"`
	Mirror       MirrorConfig   `mapstructure:"mirror"`
	Response     ResponseConfig `mapstructure:"response"`
	Probe        ProbeConfig    `mapstructure:"probe"`
	Logging      LoggingConfig  `mapstructure:"logging"`
}

// Load reads configuration from the given file, the environment, and
// built-in defaults, in increasing order of precedence overridden only
// by listenOverride when non-empty. A missing config file is not an
// error; defaults and environment variables still apply.
func Load(configFile, listenOverride string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("mirror.timeout", "30s")
	v.SetDefault("response.default_status", 200)
	v.SetDefault("response.default_body", "All good!")
	v.SetDefault("probe.interval", "10s")
	v.SetDefault("logging.level", LogLevelInfo)

	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables",
			slog.String("file", configFile))
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	if listenOverride != "" {
		v.Set("server.address", listenOverride)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.Destinations = normalizeDestinations(cfg.Destinations)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// normalizeDestinations drops empty entries and duplicates while keeping
// first-occurrence order. An empty result is valid: the server then
// answers every request with the configured default response.
func normalizeDestinations(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	return out
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Mirror,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MirrorConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MirrorConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Response,
			validation.Required,
			validation.By(func(value interface{}) error {
				rc, ok := value.(ResponseConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ResponseConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.DefaultStatus,
						validation.Required,
						validation.Min(100),
						validation.Max(599),
					),
				)
			}),
		),
		validation.Field(&c.Probe,
			validation.By(func(value interface{}) error {
				pc, ok := value.(ProbeConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ProbeConfig")
				}
				if pc.Interval == "" {
					return nil
				}
				return validateDuration(pc.Interval)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}
