package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/signet"
	signethttp "github.com/sagarc03/signet/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for signet.
type Config struct {
	Server ServerConfig          `mapstructure:"server"`
	Auth   AuthConfig            `mapstructure:"auth"`
	S3     S3Config              `mapstructure:"s3"`
	Wasabi WasabiConfig          `mapstructure:"wasabi"`
	CORS   signethttp.CORSConfig `mapstructure:"cors"`
	Log    LogConfig             `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Mode                string `mapstructure:"mode" validate:"required,oneof=password passthrough"`
	Username            string `mapstructure:"username" validate:"required_if=Mode password"`
	PasswordHash        string `mapstructure:"password_hash" validate:"required_if=Mode password"`
	JWTSecret           string `mapstructure:"jwt_secret" validate:"required_if=Mode password"`
	TokenTTL            int    `mapstructure:"token_ttl" validate:"omitempty,min=900,max=43200"`
	RequireSessionToken bool   `mapstructure:"require_session_token"`
}

// S3Config holds the default storage target and optional default
// credentials used when a request carries no credential headers.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region" validate:"required"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// WasabiConfig holds the temporary-credential endpoints.
type WasabiConfig struct {
	AuthEndpoint string `mapstructure:"auth_endpoint" validate:"required,url"`
	STSEndpoint  string `mapstructure:"sts_endpoint" validate:"required,url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// AuthMode returns the parsed auth mode.
func (c *Config) AuthMode() (signet.AuthMode, error) {
	return signet.ParseAuthMode(c.Auth.Mode)
}

// Account returns the configured API account.
func (c *Config) Account() signet.Account {
	return signet.Account{
		Username:     c.Auth.Username,
		PasswordHash: c.Auth.PasswordHash,
	}
}

// TokenConfig returns the token issuance settings.
func (c *Config) TokenConfig() signet.TokenConfig {
	return signet.TokenConfig{
		Secret:   c.Auth.JWTSecret,
		TokenTTL: time.Duration(c.Auth.TokenTTL) * time.Second,
	}
}

// DefaultCredentials returns the configured fallback storage credentials.
// The bundle may be incomplete; the http layer rejects requests that end
// up without usable credentials.
func (c *Config) DefaultCredentials() signet.StorageCredentials {
	return signet.StorageCredentials{
		AccessKeyID:     c.S3.AccessKey,
		SecretAccessKey: c.S3.SecretKey,
		Region:          c.S3.Region,
		EndpointURL:     c.S3.Endpoint,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":      "server.port",
	"auth-mode": "auth.mode",
	"bucket":    "s3.bucket",
	"region":    "s3.region",
	"endpoint":  "s3.endpoint",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("auth.mode", "password")
	v.SetDefault("auth.token_ttl", 3600) // seconds
	v.SetDefault("auth.require_session_token", false)

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("wasabi.auth_endpoint", "https://s3.wasabisys.com")
	v.SetDefault("wasabi.sts_endpoint", "https://sts.wasabisys.com")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SIGNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
