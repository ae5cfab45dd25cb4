package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"termplay/internal/config"
	"termplay/internal/dispatch"
	"termplay/internal/downloader"
	"termplay/internal/engine"
	"termplay/internal/library"
	"termplay/internal/logger"
	"termplay/internal/lyrics"
	"termplay/internal/metadata"
	"termplay/internal/player"
	"termplay/internal/provider/deezer"
	"termplay/internal/remote"
	"termplay/internal/shutdown"
	"termplay/internal/song"
	"termplay/internal/terminal"
	"termplay/pkg/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// fetcher adapts the downloader to the dispatcher.
type fetcher struct {
	*downloader.Downloader
}

func (f fetcher) Fetch(ctx context.Context, v downloader.Video) dispatch.Download {
	return f.Start(ctx, v)
}

func run(cfg config.Config, configPath string) error {
	sh := shutdown.New()
	sh.Listen()
	defer sh.Wait()
	defer sh.Shutdown()

	log := logger.New(cfg.Verbose)
	defer log.Close()

	logFile := filepath.Join(config.GetDefaultLogPath(), fmt.Sprintf("termplay_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	if err := log.SetFileLog(logFile); err != nil {
		log.Warn("Failed to setup file logging: %v", err)
	} else {
		log.Debug("Logging to file: %s", logFile)
	}
	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	loader := library.NewLoader(metadata.DefaultReader(log), log)
	loader.Workers = cfg.LoadWorkers
	loader.NameOverrides = cfg.NameOverrides
	loader.ShowProgress = !cfg.Verbose && term.IsTerminal(int(os.Stderr.Fd()))

	songs, err := loader.Load(sh.Context(), cfg.LibraryDir)
	if err != nil {
		return err
	}
	log.Info("Loaded %d songs from %s", len(songs), cfg.LibraryDir)

	drv := player.NewDefault(log)
	drv.SetVolume(cfg.Volume)
	sh.AddCleanup(func() {
		if err := drv.Close(); err != nil {
			log.Warn("Failed to close audio output: %v", err)
		}
	})

	e := engine.New(songs, drv, log)
	if cfg.Shuffle {
		e.Shuffle()
	} else {
		col, err := song.ParseColumn(cfg.SortColumn)
		if err != nil {
			return err
		}
		if err := e.Sort(col, cfg.Reverse); err != nil {
			return err
		}
	}

	d := dispatch.New(sh.Context(), e, drv, log)
	d.Guesses = cfg.Guesses
	d.SearchResults = cfg.SearchResults
	d.TagWriter = metadata.WriteTags
	if !cfg.Offline {
		d.Lyrics = lyrics.NewClient()
	}
	if err := utils.CheckDependencies(); err != nil {
		log.Warn("%v", err)
	} else {
		dl := downloader.New(cfg, log)
		if !cfg.Offline {
			dl.Lookup = deezer.New().Lookup
		}
		d.Fetcher = fetcher{dl}
	}

	a := &app{
		log:        log,
		engine:     e,
		player:     drv,
		dispatcher: d,
		loader:     loader,
		screen:     terminal.NewScreen(os.Stdout),
		input:      terminal.NewInput(os.Stdin),
		poll:       cfg.PollInterval,
	}

	if cfg.Watch {
		w, err := library.NewWatcher(log, cfg.LibraryDir)
		if err != nil {
			log.Warn("Not watching for new files: %v", err)
		} else {
			sh.AddCleanup(func() { w.Close() })
			sh.Go(w.Run)
			a.added = w.Added()
		}
	}

	if cfg.RemoteAddr != "" {
		srv := remote.New(cfg.RemoteAddr, log)
		a.remote = srv.Commands()
		sh.Go(func(ctx context.Context) {
			if err := srv.Serve(ctx); err != nil {
				log.Warn("%v", err)
			}
		})
	}

	return a.loop(sh.Context())
}
