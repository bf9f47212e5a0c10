package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/report"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyBaseURL      = "backend.base_url"
	KeyPollInterval = "backend.poll_interval"
	KeyHTTPTimeout  = "http.timeout"
	KeyCurrency     = "display.currency"
	KeyLocale       = "display.locale"
	KeyTheme        = "display.theme"
	KeyCacheEnabled = "cache.enabled"
	KeyCachePath    = "cache.path"
	KeyCacheTTL     = "cache.ttl"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeyLogFile      = "logging.file"
)

// Default values.
const (
	DefaultBaseURL      = "http://localhost:5000"
	DefaultPollInterval = 10 * time.Second
	DefaultTheme        = "default"
	DefaultCachePath    = "~/.config/hntax/cache.db"
	DefaultCacheTTL     = 24 * time.Hour
	DefaultLogFile      = "~/.config/hntax/hntax.log"
)

// EnvPrefix is prepended to every environment override, e.g.
// HNTAX_BACKEND_BASE_URL.
const EnvPrefix = "HNTAX"

var themes = []string{"default", "catppuccin-mocha"}

// Settings is the validated application configuration.
type Settings struct {
	BaseURL      string
	Currency     string
	Locale       string
	Theme        string
	CachePath    string
	LogLevel     string
	LogFormat    string
	LogFile      string
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	CacheTTL     time.Duration
	CacheEnabled bool
}

// SetDefaults registers every default on v and enables environment
// overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyPollInterval, DefaultPollInterval)
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
	v.SetDefault(KeyCurrency, report.DefaultCurrency)
	v.SetDefault(KeyLocale, report.DefaultLocale)
	v.SetDefault(KeyTheme, DefaultTheme)
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCachePath, DefaultCachePath)
	v.SetDefault(KeyCacheTTL, DefaultCacheTTL)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, DefaultLogFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		BaseURL:      strings.TrimSpace(v.GetString(KeyBaseURL)),
		PollInterval: v.GetDuration(KeyPollInterval),
		HTTPTimeout:  v.GetDuration(KeyHTTPTimeout),
		Currency:     strings.ToUpper(strings.TrimSpace(v.GetString(KeyCurrency))),
		Locale:       strings.TrimSpace(v.GetString(KeyLocale)),
		Theme:        strings.TrimSpace(v.GetString(KeyTheme)),
		CacheEnabled: v.GetBool(KeyCacheEnabled),
		CachePath:    ExpandPath(v.GetString(KeyCachePath)),
		CacheTTL:     v.GetDuration(KeyCacheTTL),
		LogLevel:     strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(KeyLogFormat)),
		LogFile:      ExpandPath(v.GetString(KeyLogFile)),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyBaseURL)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", common.ErrInvalidConfig, KeyBaseURL, s.BaseURL)
	}

	if s.PollInterval <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", common.ErrInvalidConfig, KeyPollInterval, s.PollInterval)
	}
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyHTTPTimeout)
	}

	if _, err := report.NewMoneyFormatter(s.Currency, s.Locale); err != nil {
		return err
	}

	if !validTheme(s.Theme) {
		return fmt.Errorf("%w: %s must be one of %s, got %q",
			common.ErrInvalidConfig, KeyTheme, strings.Join(themes, ", "), s.Theme)
	}

	if s.CacheEnabled {
		if s.CachePath == "" {
			return fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyCachePath)
		}
		if s.CacheTTL <= 0 {
			return fmt.Errorf("%w: %s must be positive", common.ErrInvalidConfig, KeyCacheTTL)
		}
	}

	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %s must be console or json, got %q", common.ErrInvalidConfig, KeyLogFormat, s.LogFormat)
	}

	return nil
}

// Themes lists the accepted display.theme values.
func Themes() []string {
	return append([]string(nil), themes...)
}

func validTheme(name string) bool {
	for _, t := range themes {
		if t == name {
			return true
		}
	}
	return false
}
