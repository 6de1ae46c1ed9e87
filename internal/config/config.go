// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is constructed once
// at startup and passed explicitly into the components that need it.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Target  TargetConfig  `mapstructure:"target" yaml:"target"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Pacing  PacingConfig  `mapstructure:"pacing" yaml:"pacing"`
	Engage  EngageConfig  `mapstructure:"engage" yaml:"engage"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
}

// LoggerConfig controls the zap logging setup.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// TargetConfig holds the platform URLs the automation is pointed at.
type TargetConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	FeedURL  string `mapstructure:"feed_url" yaml:"feed_url"`
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`
}

// AuthConfig holds the account credentials. These should come from the
// environment (FEEDPILOT_AUTH_USERNAME / FEEDPILOT_AUTH_PASSWORD) rather
// than a config file on disk.
type AuthConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// BrowserConfig holds settings for the controlled browser instance.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth       int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight      int           `mapstructure:"window_height" yaml:"window_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
	ElementTimeout    time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
	ShortTimeout      time.Duration `mapstructure:"short_timeout" yaml:"short_timeout"`
}

// PacingConfig bounds the randomized human-like delays.
type PacingConfig struct {
	TypingDelayMin   time.Duration `mapstructure:"typing_delay_min" yaml:"typing_delay_min"`
	TypingDelayMax   time.Duration `mapstructure:"typing_delay_max" yaml:"typing_delay_max"`
	ActionDelayMin   time.Duration `mapstructure:"action_delay_min" yaml:"action_delay_min"`
	ActionDelayMax   time.Duration `mapstructure:"action_delay_max" yaml:"action_delay_max"`
	PageLoadWaitMin  time.Duration `mapstructure:"page_load_wait_min" yaml:"page_load_wait_min"`
	PageLoadWaitMax  time.Duration `mapstructure:"page_load_wait_max" yaml:"page_load_wait_max"`
	ScrollWaitMin    time.Duration `mapstructure:"scroll_wait_min" yaml:"scroll_wait_min"`
	ScrollWaitMax    time.Duration `mapstructure:"scroll_wait_max" yaml:"scroll_wait_max"`
}

// EngageConfig carries the defaults for the engagement stream.
type EngageConfig struct {
	Mode            string `mapstructure:"mode" yaml:"mode"`
	CommentText     string `mapstructure:"comment_text" yaml:"comment_text"`
	MaxActions      int    `mapstructure:"max_actions" yaml:"max_actions"`
	IncludePromoted bool   `mapstructure:"include_promoted" yaml:"include_promoted"`
	MentionAuthor   bool   `mapstructure:"mention_author" yaml:"mention_author"`
	MentionPosition string `mapstructure:"mention_position" yaml:"mention_position"`
	Infinite        bool   `mapstructure:"infinite" yaml:"infinite"`
	StateDir        string `mapstructure:"state_dir" yaml:"state_dir"`
}

// AIConfig configures the generation collaborator.
type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	Model        string        `mapstructure:"model" yaml:"model"`
	Endpoint     string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout   time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	MaxTokens    int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature" yaml:"temperature"`
	Perspectives []string      `mapstructure:"perspectives" yaml:"perspectives"`
	TemplateFile string        `mapstructure:"template_file" yaml:"template_file"`
}

// SetDefaults registers every default value on the provided viper instance.
// Flags and environment variables override these.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "feedpilot")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	v.SetDefault("target.base_url", "https://www.linkedin.com/")
	v.SetDefault("target.feed_url", "https://www.linkedin.com/feed/")
	v.SetDefault("target.login_url", "https://www.linkedin.com/login/")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.navigation_timeout", 90*time.Second)
	v.SetDefault("browser.post_load_wait", 1500*time.Millisecond)
	v.SetDefault("browser.element_timeout", 10*time.Second)
	v.SetDefault("browser.short_timeout", 5*time.Second)

	v.SetDefault("pacing.typing_delay_min", 50*time.Millisecond)
	v.SetDefault("pacing.typing_delay_max", 150*time.Millisecond)
	v.SetDefault("pacing.action_delay_min", 1*time.Second)
	v.SetDefault("pacing.action_delay_max", 3*time.Second)
	v.SetDefault("pacing.page_load_wait_min", 2*time.Second)
	v.SetDefault("pacing.page_load_wait_max", 5*time.Second)
	v.SetDefault("pacing.scroll_wait_min", 1500*time.Millisecond)
	v.SetDefault("pacing.scroll_wait_max", 3*time.Second)

	v.SetDefault("engage.mode", "like")
	v.SetDefault("engage.max_actions", 12)
	v.SetDefault("engage.mention_position", "append")
	v.SetDefault("engage.state_dir", "state")

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.api_timeout", 60*time.Second)
	v.SetDefault("ai.max_tokens", 180)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.perspectives", []string{"funny", "motivational", "insightful"})
	v.SetDefault("ai.template_file", "CustomPosts.txt")
}

// Bind wires the environment into viper: FEEDPILOT_LOGGER_LEVEL overrides
// logger.level and so on.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix("FEEDPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file (if any), applies defaults and environment
// overrides, and unmarshals the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	Bind(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
