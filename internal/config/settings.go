package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrEmptyCommunity is returned when the default community is blank
var ErrEmptyCommunity = errors.New("community name is empty")

// Settings holds the startup options read from flags, environment and the
// optional config file.
type Settings struct {
	APIBaseURL string       `mapstructure:"api"`
	Backend    string       `mapstructure:"backend"`
	DBPath     string       `mapstructure:"db"`
	Community  string       `mapstructure:"community"`
	StateFile  string       `mapstructure:"state_file"`
	LogFile    string       `mapstructure:"log_file"`
	Debug      bool         `mapstructure:"debug"`
	HTTP       HTTPSettings `mapstructure:"http"`
	UI         UISettings   `mapstructure:"ui"`
}

// HTTPSettings tunes the feed client
type HTTPSettings struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RetryMax  int           `mapstructure:"retry_max"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	Burst     int           `mapstructure:"burst"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowScore     bool   `mapstructure:"show_score"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" or "light"
	SaveOnExit    bool   `mapstructure:"save_on_exit"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	dir := Dir()
	return Settings{
		APIBaseURL: "http://localhost:8081",
		Backend:    "in-memory-by-page",
		DBPath:     filepath.Join(dir, "posts.db"),
		Community:  "",
		StateFile:  filepath.Join(dir, "state.toml"),
		LogFile:    "subpager.log",
		HTTP: HTTPSettings{
			Timeout:   10 * time.Second,
			RetryMax:  2,
			RateLimit: 10,
			Burst:     20,
			CacheTTL:  30 * time.Second,
		},
		UI: UISettings{
			ShowScore:     true,
			MarkdownStyle: "dark",
			SaveOnExit:    true,
		},
	}
}

// Dir returns the per-user configuration directory for subpager.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "subpager")
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api", d.APIBaseURL)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("db", d.DBPath)
	v.SetDefault("community", d.Community)
	v.SetDefault("state_file", d.StateFile)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.retry_max", d.HTTP.RetryMax)
	v.SetDefault("http.rate_limit", d.HTTP.RateLimit)
	v.SetDefault("http.burst", d.HTTP.Burst)
	v.SetDefault("http.cache_ttl", d.HTTP.CacheTTL)
	v.SetDefault("ui.show_score", d.UI.ShowScore)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("ui.save_on_exit", d.UI.SaveOnExit)

	v.SetEnvPrefix("SUBPAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// ReadFile points v at cfgFile, or at config.toml in Dir when cfgFile is
// empty, and reads it. A missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load decodes the settings held by v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the values that cannot be repaired later.
func (s Settings) Validate() error {
	if s.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if s.Community != "" && strings.TrimSpace(s.Community) == "" {
		return fmt.Errorf("default community: %w", ErrEmptyCommunity)
	}
	if s.HTTP.RetryMax < 0 {
		return fmt.Errorf("http.retry_max must not be negative, got %d", s.HTTP.RetryMax)
	}
	if s.HTTP.RateLimit <= 0 {
		return fmt.Errorf("http.rate_limit must be positive, got %v", s.HTTP.RateLimit)
	}
	return nil
}
