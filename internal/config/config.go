package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TagCategory declares one tag prefix that gets its own filter group.
type TagCategory struct {
	// Prefix is the category portion of a "category:value" tag.
	Prefix string `yaml:"prefix" json:"prefix"`
	// Placeholder is a UI hint passed through to the presentation layer.
	Placeholder string `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// DayTagConfig controls synthesis of the virtual "days" tag category.
type DayTagConfig struct {
	Generate bool `yaml:"generate" json:"generate"`
}

// TagsConfig configures tag handling for one entity type.
type TagsConfig struct {
	// FormatAsTag converts a raw "format" feed field into a type:<format> tag.
	FormatAsTag bool `yaml:"format_as_tag" json:"format_as_tag"`
	// Separate lists the categories that get their own filter group.
	Separate []TagCategory `yaml:"separate" json:"separate"`
	// DayTag enables the synthesized per-date category.
	DayTag DayTagConfig `yaml:"day_tag" json:"day_tag"`
}

// LinkConfig maps a named link in a program record to an optional tag.
// A link whose Tag is empty is displayed but never synthesized into a tag.
type LinkConfig struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
	Tag  string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Timezone is the convention's IANA zone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`
	// TimezoneCode is the abbreviation appended to convention-zone times.
	TimezoneCode string `yaml:"timezone_code" json:"timezone_code"`

	// Locale is a BCP 47 tag used for collation of people names.
	Locale string `yaml:"locale" json:"locale"`

	// ProgramURL and PeopleURL are the two feed endpoints.
	ProgramURL string `yaml:"program_url" json:"program_url"`
	PeopleURL  string `yaml:"people_url" json:"people_url"`

	// CacheDir is where conditional-GET feed bodies and metadata are stored.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// RefreshCron is a cron-style schedule for full dataset refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultDurationMins applies to items without an explicit mins field.
	DefaultDurationMins int `yaml:"default_duration_mins" json:"default_duration_mins"`
	// PreBufferMins / PostBufferMins widen an item's "currently relevant"
	// window around its start and end.
	PreBufferMins  int `yaml:"pre_buffer_mins" json:"pre_buffer_mins"`
	PostBufferMins int `yaml:"post_buffer_mins" json:"post_buffer_mins"`

	// Tags configures program item tags; PeopleTags configures person tags.
	Tags       TagsConfig `yaml:"tags" json:"tags"`
	PeopleTags TagsConfig `yaml:"people_tags" json:"people_tags"`

	// Links declares named program links and their optional tag mapping.
	Links []LinkConfig `yaml:"links" json:"links"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              "127.0.0.1:8080",
		LogLevel:            "info",
		Timezone:            "Europe/Berlin",
		TimezoneCode:        "CET",
		Locale:              "en",
		CacheDir:            "./var/feed-cache",
		RefreshCron:         "*/15 * * * *",
		DefaultDurationMins: 60,
		PreBufferMins:       15,
		PostBufferMins:      15,
		Tags: TagsConfig{
			FormatAsTag: false,
			Separate: []TagCategory{
				{Prefix: "type", Placeholder: "select_type"},
				{Prefix: "track", Placeholder: "select_track"},
			},
			DayTag: DayTagConfig{Generate: true},
		},
		PeopleTags: TagsConfig{Separate: []TagCategory{}},
		Links:      []LinkConfig{},
		BasicAuth:  nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Berlin"
	}
	if c.TimezoneCode == "" {
		c.TimezoneCode = "CET"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/feed-cache"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.DefaultDurationMins <= 0 {
		c.DefaultDurationMins = 60
	}
	if c.PreBufferMins < 0 {
		c.PreBufferMins = 0
	}
	if c.PostBufferMins < 0 {
		c.PostBufferMins = 0
	}
	if c.Tags.Separate == nil {
		c.Tags.Separate = []TagCategory{}
	}
	if c.PeopleTags.Separate == nil {
		c.PeopleTags.Separate = []TagCategory{}
	}
	if c.Links == nil {
		c.Links = []LinkConfig{}
	}
}

// ConventionZone loads the configured IANA convention time zone.
func (c *Config) ConventionZone() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// The write is atomic (temp file + rename in the same directory) and the
// final file ends up with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".conprog-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
