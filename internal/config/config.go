package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete xnav configuration
type Config struct {
	MaxEntries           int           `json:"max_entries" mapstructure:"max_entries"`
	IgnoredPatterns      []string      `json:"ignored_patterns" mapstructure:"ignored_patterns"`
	UpdateThresholdHours float64       `json:"update_threshold_hours" mapstructure:"update_threshold_hours"`
	EnableFuzzyMatching  bool          `json:"enable_fuzzy_matching" mapstructure:"enable_fuzzy_matching"`
	ShowStatsOnQuery     bool          `json:"show_stats_on_query" mapstructure:"show_stats_on_query"`
	AutoCleanOnStartup   bool          `json:"auto_clean_on_startup" mapstructure:"auto_clean_on_startup"`
	FzfOptions           string        `json:"fzf_options" mapstructure:"fzf_options"`
	MaxResults           int           `json:"max_results" mapstructure:"max_results"`
	Logging              LoggingConfig `json:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"max_size,omitempty" mapstructure:"max_size"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
}

// DefaultIgnoredPatterns are the build and VCS directories nobody wants to jump into
var DefaultIgnoredPatterns = []string{
	"**/node_modules",
	"**/node_modules/**",
	"**/.git",
	"**/.git/**",
	"**/target",
	"**/target/**",
	"**/.cache",
	"**/.cache/**",
	"**/build",
	"**/build/**",
	"**/dist",
	"**/dist/**",
	"**/*.log",
	"**/*.tmp",
}

// DefaultThresholdHours is one week
const DefaultThresholdHours = 168

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries:           1000,
		IgnoredPatterns:      append([]string(nil), DefaultIgnoredPatterns...),
		UpdateThresholdHours: DefaultThresholdHours,
		EnableFuzzyMatching:  true,
		ShowStatsOnQuery:     false,
		AutoCleanOnStartup:   false,
		FzfOptions:           "--height=40% --reverse --border",
		MaxResults:           20,
		Logging: LoggingConfig{
			Level:      "warn",
			MaxBackups: 3,
		},
	}
}

// LoadResult contains the loaded config plus everything the CLI needs to report about it
type LoadResult struct {
	Config       *Config
	Policy       *Policy
	ConfigPath   string
	UsedDefaults bool
	Warnings     []error
}

// LoadConfig loads configuration from configPath (JSON) with XNAV_* environment
// overrides. A missing file yields the defaults. A malformed file never fails
// the load: the defaults are used and the problem is reported in Warnings.
func LoadConfig(configPath string) *LoadResult {
	result := &LoadResult{ConfigPath: configPath}

	v := newViper()
	fileFound := false
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			fileFound = true
			v.SetConfigFile(configPath)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				result.Warnings = append(result.Warnings, &ConfigError{Field: "file", Message: err.Error()})
				v = newViper()
				fileFound = false
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		result.Warnings = append(result.Warnings, &ConfigError{Field: "file", Message: err.Error()})
		cfg = *DefaultConfig()
		fileFound = false
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		result.Warnings = append(result.Warnings, errs...)
		cfg.applyDefaultsForInvalid(errs)
	}

	policy, err := Compile(cfg.IgnoredPatterns)
	if err != nil {
		result.Warnings = append(result.Warnings, err)
		cfg.IgnoredPatterns = append([]string(nil), DefaultIgnoredPatterns...)
		policy = MustCompile(cfg.IgnoredPatterns)
	}

	result.Config = &cfg
	result.Policy = policy
	result.UsedDefaults = !fileFound
	return result
}

// newViper returns a viper instance seeded with every default so that
// AutomaticEnv can override any key.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("max_entries", d.MaxEntries)
	v.SetDefault("ignored_patterns", d.IgnoredPatterns)
	v.SetDefault("update_threshold_hours", d.UpdateThresholdHours)
	v.SetDefault("enable_fuzzy_matching", d.EnableFuzzyMatching)
	v.SetDefault("show_stats_on_query", d.ShowStatsOnQuery)
	v.SetDefault("auto_clean_on_startup", d.AutoCleanOnStartup)
	v.SetDefault("fzf_options", d.FzfOptions)
	v.SetDefault("max_results", d.MaxResults)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)

	v.SetEnvPrefix("XNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Save writes the configuration to configPath as indented JSON
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, append(data, '\n'), 0644)
}

// Validate checks the numeric tunables. It returns one ConfigError per bad field.
func (c *Config) Validate() []error {
	var errs []error
	if c.MaxEntries <= 0 {
		errs = append(errs, &ConfigError{Field: "max_entries", Message: "must be positive"})
	}
	if c.UpdateThresholdHours <= 0 {
		errs = append(errs, &ConfigError{Field: "update_threshold_hours", Message: "must be positive"})
	}
	if c.MaxResults <= 0 {
		errs = append(errs, &ConfigError{Field: "max_results", Message: "must be positive"})
	}
	return errs
}

func (c *Config) applyDefaultsForInvalid(errs []error) {
	d := DefaultConfig()
	for _, err := range errs {
		ce, ok := err.(*ConfigError)
		if !ok {
			continue
		}
		switch ce.Field {
		case "max_entries":
			c.MaxEntries = d.MaxEntries
		case "update_threshold_hours":
			c.UpdateThresholdHours = d.UpdateThresholdHours
		case "max_results":
			c.MaxResults = d.MaxResults
		}
	}
}

// Get returns a single top-level value by its JSON key, for shell hooks.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case "max_entries":
		return fmt.Sprint(c.MaxEntries), true
	case "ignored_patterns":
		return strings.Join(c.IgnoredPatterns, "\n"), true
	case "update_threshold_hours":
		return fmt.Sprint(c.UpdateThresholdHours), true
	case "enable_fuzzy_matching":
		return fmt.Sprint(c.EnableFuzzyMatching), true
	case "show_stats_on_query":
		return fmt.Sprint(c.ShowStatsOnQuery), true
	case "auto_clean_on_startup":
		return fmt.Sprint(c.AutoCleanOnStartup), true
	case "fzf_options":
		return c.FzfOptions, true
	case "max_results":
		return fmt.Sprint(c.MaxResults), true
	}
	return "", false
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
