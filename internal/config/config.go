package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"termplay/internal/song"
)

// Config contains the program configuration
type Config struct {
	LibraryDir     string        `yaml:"library_dir"`
	Verbose        bool          `yaml:"verbose"`
	Volume         int           `yaml:"volume"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	SortColumn     string        `yaml:"sort_column"`
	Reverse        bool          `yaml:"reverse"`
	Shuffle        bool          `yaml:"shuffle"`
	Guesses        int           `yaml:"guesses"`
	NameOverrides  bool          `yaml:"name_overrides_tags"`
	Watch          bool          `yaml:"watch"`
	LoadWorkers    int           `yaml:"load_workers"`
	DownloadDir    string        `yaml:"download_dir"`
	AudioFormat    string        `yaml:"audio_format"`
	CookiesBrowser string        `yaml:"cookies_browser"`
	SearchResults  int           `yaml:"search_results"`
	RemoteAddr     string        `yaml:"remote_addr"`
	Offline        bool          `yaml:"offline"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		LibraryDir:    filepath.Join(homeDir(), "Music"),
		Volume:        100,
		PollInterval:  500 * time.Millisecond,
		SortColumn:    string(song.DateModified),
		Reverse:       true,
		Guesses:       5,
		NameOverrides: true,
		Watch:         true,
		LoadWorkers:   8,
		AudioFormat:   "mp3",
		SearchResults: 5,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.expandPaths()
	return cfg, nil
}

// Load reads the .env file, the YAML config and then TERMPLAY_* environment
// overrides, in that order of increasing precedence.
func Load(path string) (Config, error) {
	loadDotEnv()

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	cfg.expandPaths()
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.LibraryDir = ExpandHome(c.LibraryDir)
	c.DownloadDir = ExpandHome(c.DownloadDir)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./termplay.yaml",
		"./termplay.yml",
		filepath.Join(home, ".config", "termplay", "config.yaml"),
		filepath.Join(home, ".config", "termplay", "config.yml"),
		filepath.Join(home, ".termplay.yaml"),
		filepath.Join(home, ".termplay.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "termplay", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "termplay", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Downloads returns the directory downloads are saved to, which is the
// library directory unless configured otherwise.
func (c *Config) Downloads() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	return c.LibraryDir
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.LibraryDir == "" {
		return fmt.Errorf("library_dir cannot be empty")
	}

	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Volume)
	}

	if c.PollInterval < 10*time.Millisecond || c.PollInterval > 5*time.Second {
		return fmt.Errorf("poll_interval must be between 10ms and 5s, got %s", c.PollInterval)
	}

	if c.SortColumn != "" {
		if _, err := song.ParseColumn(c.SortColumn); err != nil {
			return fmt.Errorf("invalid sort_column: %w", err)
		}
	}

	if c.Guesses < 0 {
		return fmt.Errorf("guesses cannot be negative, got %d", c.Guesses)
	}

	if c.LoadWorkers < 1 {
		return fmt.Errorf("load workers must be at least 1, got %d", c.LoadWorkers)
	}
	if c.LoadWorkers > 64 {
		return fmt.Errorf("load workers cannot exceed 64, got %d", c.LoadWorkers)
	}

	validFormats := []string{"mp3", "flac", "wav"}
	if !slices.Contains(validFormats, c.AudioFormat) {
		return fmt.Errorf("unsupported audio format '%s', valid formats: %v", c.AudioFormat, validFormats)
	}

	if c.SearchResults < 1 || c.SearchResults > 25 {
		return fmt.Errorf("search_results must be between 1 and 25, got %d", c.SearchResults)
	}

	return nil
}
