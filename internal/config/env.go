package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TERMPLAY_"

// loadDotEnv loads ./.env into the environment. Variables that are already
// set are not overridden, and a missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	return v, ok && v != ""
}

// ApplyEnv overrides configuration values with TERMPLAY_* environment
// variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"LIBRARY_DIR":     &c.LibraryDir,
		"DOWNLOAD_DIR":    &c.DownloadDir,
		"SORT_COLUMN":     &c.SortColumn,
		"AUDIO_FORMAT":    &c.AudioFormat,
		"COOKIES_BROWSER": &c.CookiesBrowser,
		"REMOTE_ADDR":     &c.RemoteAddr,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"VOLUME":         &c.Volume,
		"GUESSES":        &c.Guesses,
		"LOAD_WORKERS":   &c.LoadWorkers,
		"SEARCH_RESULTS": &c.SearchResults,
	}
	for key, dst := range ints {
		if v, ok := lookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, v, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"VERBOSE":             &c.Verbose,
		"REVERSE":             &c.Reverse,
		"SHUFFLE":             &c.Shuffle,
		"WATCH":               &c.Watch,
		"NAME_OVERRIDES_TAGS": &c.NameOverrides,
		"OFFLINE":             &c.Offline,
	}
	for key, dst := range bools {
		if v, ok := lookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, v, err)
			}
			*dst = b
		}
	}

	if v, ok := lookupEnv("POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sPOLL_INTERVAL %q: %w", envPrefix, v, err)
		}
		c.PollInterval = d
	}

	return nil
}
