package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"termplay/internal/config"
)

type options struct {
	configPath string
	verbose    bool
	initConfig bool
	sort       string
	reverse    bool
	shuffle    bool
	offline    bool
}

// newRootCmd builds the command line.
// Priority: CLI flags > environment > config file > defaults
func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "termplay [directory]",
		Short: "termplay - play a music library from the terminal",
		Long: `termplay plays every audio file under a directory, one song at a time,
and reads commands from the keyboard while it plays. Type "help" while
playing for the list of commands.

Config file locations (checked in order):
  ./termplay.yaml
  ~/.config/termplay/config.yaml
  ~/.termplay.yaml

Logs are written to ~/.local/share/termplay/logs/`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.initConfig {
				return initConfigFile()
			}
			cfg, configPath, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			return run(cfg, configPath)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show detailed output")
	flags.BoolVar(&opts.initConfig, "init-config", false, "create a default config file and exit")
	flags.StringVarP(&opts.sort, "sort", "s", "", "column to sort the library by (default date_modified)")
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "sort in descending order (default true)")
	flags.BoolVar(&opts.shuffle, "shuffle", false, "play the library in random order")
	flags.BoolVar(&opts.offline, "offline", false, "do not look lyrics or tags up online")
	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts options, args []string) (config.Config, string, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.LibraryDir = config.ExpandHome(args[0])
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("sort") {
		cfg.SortColumn = opts.sort
	}
	if flags.Changed("reverse") {
		cfg.Reverse = opts.reverse
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle = opts.shuffle
	}
	if flags.Changed("offline") {
		cfg.Offline = opts.offline
	}
	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		return nil
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  library_dir: directory to play (default ~/Music)")
	fmt.Println("  sort_column: title, artist, album, genre, year, length, date_modified")
	fmt.Println("  reverse / shuffle: true/false (initial order)")
	fmt.Println("  volume: 0-100")
	fmt.Println("  name_overrides_tags: true/false (\"<title> - <artist>\" file names win over tags)")
	fmt.Println("  watch: true/false (pick up new files while playing)")
	fmt.Println("  download_dir, audio_format, cookies_browser: settings for the download command")
	fmt.Println("  remote_addr: host:port for the remote control endpoint (empty to disable)")
	fmt.Println("  offline: true to skip lyrics and tag lookups")
	fmt.Println("  verbose: true/false (enable detailed logging)")
	return nil
}
