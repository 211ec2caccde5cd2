package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/learnhub/internal/llm"
)

// EnvPrefix is prepended to every environment override, e.g.
// LEARNHUB_API_BASE_URL for api.base_url.
const EnvPrefix = "LEARNHUB"

type Config struct {
	Identity IdentityConfig `mapstructure:"identity"`
	API      APIConfig      `mapstructure:"api"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      llm.Config     `mapstructure:"llm"`
	Log      LogConfig      `mapstructure:"log"`

	// DB is the proxy usage log. Empty means the XDG data dir default.
	DB string `mapstructure:"db"`
}

// IdentityConfig describes the OpenID Connect application registration.
type IdentityConfig struct {
	ClientID              string   `mapstructure:"client_id"`
	Authority             string   `mapstructure:"authority"`
	RedirectURI           string   `mapstructure:"redirect_uri"`
	PostLogoutRedirectURI string   `mapstructure:"post_logout_redirect_uri"`
	Scopes                []string `mapstructure:"scopes"`
	APIScope              string   `mapstructure:"api_scope"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	ProxyURL string        `mapstructure:"proxy_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures `learnhub serve`.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// RateLimit is chat requests per minute per client IP; 0 disables it.
	RateLimit int `mapstructure:"rate_limit"`
	Burst     int `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Redact bool   `mapstructure:"redact"`
	Salt   string `mapstructure:"hash_salt"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("identity.client_id", "")
	v.SetDefault("identity.authority", "")
	v.SetDefault("identity.redirect_uri", "http://localhost:8400/redirect")
	v.SetDefault("identity.post_logout_redirect_uri", "")
	v.SetDefault("identity.scopes", []string{"openid", "profile", "email", "offline_access"})
	v.SetDefault("identity.api_scope", "")

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 60*time.Second)

	v.SetDefault("chat.proxy_url", "http://localhost:3000")
	v.SetDefault("chat.timeout", 90*time.Second)

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.burst", 5)

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.azure.api_key", "")
	v.SetDefault("llm.azure.endpoint", "")
	v.SetDefault("llm.azure.deployment", d.Azure.Deployment)
	v.SetDefault("llm.azure.api_version", d.Azure.APIVersion)
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.openrouter.referer", "")
	v.SetDefault("llm.openrouter.title", d.OpenRouter.Title)
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.redact", true)
	v.SetDefault("log.hash_salt", "")

	v.SetDefault("db", "")
}

// bindProviderEnv lets the conventional provider variables fill in when the
// prefixed ones are absent.
func bindProviderEnv(v *viper.Viper) {
	bind := func(key string, envs ...string) {
		names := append([]string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
	bind("identity.client_id", "AZURE_CLIENT_ID")
	bind("identity.authority", "AZURE_AUTHORITY")
	bind("llm.openai.api_key", "OPENAI_API_KEY")
	bind("llm.azure.api_key", "AZURE_OPENAI_KEY", "AZURE_OPENAI_API_KEY")
	bind("llm.azure.endpoint", "AZURE_OPENAI_ENDPOINT")
	bind("llm.azure.deployment", "DEPLOYMENT_NAME")
	bind("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	bind("llm.gemini.api_key", "GEMINI_API_KEY")
	bind("llm.openrouter.api_key", "OPENROUTER_API_KEY")
}

// Load resolves configuration from defaults, an optional learnhub.yaml,
// the environment and finally any changed flags in fs. A non-empty file
// must exist.
func Load(file string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindProviderEnv(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("learnhub")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps config keys to the persistent cobra flags that override them.
var flagKeys = map[string]string{
	"api.base_url":   "api-url",
	"chat.proxy_url": "proxy-url",
	"server.addr":    "addr",
	"llm.provider":   "provider",
	"log.level":      "log-level",
	"log.file":       "log-file",
	"db":             "db",
}

// ValidateClient checks what the TUI needs before it can sign in.
func (c *Config) ValidateClient() error {
	var errs []error
	if c.Identity.ClientID == "" {
		errs = append(errs, errors.New("identity.client_id is required (LEARNHUB_IDENTITY_CLIENT_ID)"))
	}
	if _, err := url.ParseRequestURI(c.Identity.Authority); err != nil {
		errs = append(errs, fmt.Errorf("identity.authority must be an absolute URL: %w", err))
	}
	if u, err := url.Parse(c.Identity.RedirectURI); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("identity.redirect_uri %q is not a loopback URL", c.Identity.RedirectURI))
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	}
	return errors.Join(errs...)
}

// DefaultLogFile is where the TUI logs when log.file is unset.
func DefaultLogFile() string {
	return filepath.Join(stateDir(), "learnhub.log")
}

func configDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "learnhub"), nil
	}
	d, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "learnhub"), nil
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "learnhub")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "learnhub")
	}
	return os.TempDir()
}
