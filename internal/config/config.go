package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/strictdev/contact-relay/internal/logger"
	"github.com/strictdev/contact-relay/internal/validator"
)

type Web3FormsConfig struct {
	// AccessKey may legitimately be absent: the relay then answers every
	// submission with a configuration error instead of refusing to boot.
	AccessKey string `mapstructure:"access_key"`
	Endpoint  string `mapstructure:"endpoint"`
}

type TurnstileConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	// Required rejects submissions that carry no token. Leave false to keep
	// verification opt-in (the widget only renders when the site key is set).
	Required bool   `mapstructure:"required"`
	Endpoint string `mapstructure:"endpoint"`
}

type RateLimitConfig struct {
	RedisHost   string `mapstructure:"redis_host"`
	WindowMS    int64  `mapstructure:"window_ms"    validate:"gte=0"`
	MaxAttempts int    `mapstructure:"max_attempts" validate:"gte=0"`
	FailOpen    bool   `mapstructure:"fail_open"`
}

type SlogConfig struct {
	Level int `mapstructure:"level"`
}

type LoggingConfig struct {
	App     SlogConfig `mapstructure:"app"`
	UseOTLP bool       `mapstructure:"use_otlp"`
}

// See contactrelay.yaml for an example config
type Config struct {
	Web3Forms            *Web3FormsConfig `mapstructure:"web3forms" validate:"required"`
	Turnstile            *TurnstileConfig `mapstructure:"turnstile"`
	RateLimit            *RateLimitConfig `mapstructure:"ratelimit"`
	Logging              *LoggingConfig   `mapstructure:"logging"`
	ListenAddress        string           `mapstructure:"listen_address" validate:"required"`
	GracefulShutdownSecs int64            `mapstructure:"graceful_shutdown_secs"`
}

const (
	AppLogLevel          string = "logging.app.level"
	EnvPrefix            string = "contactrelay"
	GracefulShutdownSecs string = "graceful_shutdown_secs"
	ListenAddress        string = "listen_address"
	RateLimitFailOpen    string = "ratelimit.fail_open"
	RateLimitMaxAttempts string = "ratelimit.max_attempts"
	RateLimitWindowMS    string = "ratelimit.window_ms"
	RedisHost            string = "ratelimit.redis_host"
	TurnstileEndpoint    string = "turnstile.endpoint"
	TurnstileRequired    string = "turnstile.required"
	TurnstileSecretKey   string = "turnstile.secret_key" // #nosec
	UseOTLP              string = "logging.use_otlp"
	Web3FormsAccessKey   string = "web3forms.access_key" // #nosec
	Web3FormsEndpoint    string = "web3forms.endpoint"
)

var configReady = false
var config Config

func GetConfig() (*Config, error) {
	if configReady {
		logger.Logger.Debug("returning already-loaded config")
		return &config, nil
	}
	logger.Logger.Info("loading config")

	v := viper.New()

	v.SetConfigName("contactrelay")

	v.AddConfigPath("/etc/contactrelay/")
	v.AddConfigPath(".")

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.AutomaticEnv()

	// workaround for https://github.com/spf13/viper/issues/761
	// bind env vars explicitly so they unmarshal into the nested structs
	for _, key := range []string{
		Web3FormsAccessKey,
		TurnstileSecretKey,
		RedisHost,
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault(ListenAddress, ":8080")
	v.SetDefault(GracefulShutdownSecs, 10)
	v.SetDefault(Web3FormsEndpoint, "https://api.web3forms.com/submit")
	v.SetDefault(TurnstileEndpoint, "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	v.SetDefault(RateLimitWindowMS, 60_000)
	v.SetDefault(RateLimitMaxAttempts, 3)
	v.SetDefault(RateLimitFailOpen, true)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults can carry the whole
		// configuration.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Logger.Info("no config file found, using env and defaults")
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Web3Forms == nil {
		config.Web3Forms = &Web3FormsConfig{Endpoint: v.GetString(Web3FormsEndpoint)}
	}
	if config.Turnstile == nil {
		config.Turnstile = &TurnstileConfig{Endpoint: v.GetString(TurnstileEndpoint)}
	}
	if config.Logging == nil {
		config.Logging = &LoggingConfig{}
	}

	validate := validator.Create()
	if err := validate.Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	configReady = true

	return &config, nil
}

// HasAccessKey reports whether the delivery credential is usable, treating a
// blank value as absent.
func (c *Config) HasAccessKey() bool {
	return c.Web3Forms != nil && strings.TrimSpace(c.Web3Forms.AccessKey) != ""
}

// HasTurnstileSecret reports whether server-side verification is configured.
func (c *Config) HasTurnstileSecret() bool {
	return c.Turnstile != nil && strings.TrimSpace(c.Turnstile.SecretKey) != ""
}
