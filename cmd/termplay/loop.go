package main

import (
	"context"
	"fmt"
	"time"

	"termplay/internal/dispatch"
	"termplay/internal/engine"
	"termplay/internal/library"
	"termplay/internal/logger"
	"termplay/internal/player"
	"termplay/internal/remote"
	"termplay/internal/song"
	"termplay/internal/terminal"
)

// app is the control loop. Every engine and player call happens on the
// goroutine running loop; input, remote commands and new files reach it over
// channels.
type app struct {
	log        *logger.Logger
	engine     *engine.Engine
	player     player.Driver
	dispatcher *dispatch.Dispatcher
	loader     *library.Loader
	screen     *terminal.Screen
	input      *terminal.Input
	poll       time.Duration

	added  <-chan string
	remote <-chan remote.Command

	message string
}

func (a *app) loop(ctx context.Context) error {
	first, err := a.engine.FirstSong()
	if err != nil {
		return err
	}

	a.log.SetQuiet(true)
	defer a.log.SetQuiet(false)

	a.start(first)
	a.render()

	ticker := time.NewTicker(a.poll)
	defer ticker.Stop()
	lines := a.input.Lines()

	for a.engine.IsRunning() {
		// A finished song is replaced before any input is handled.
		if a.finished() {
			next, err := a.engine.NextSong()
			if err != nil {
				return err
			}
			a.message = ""
			a.start(next)
			a.render()
			continue
		}

		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			a.checkDownload()

		case line, ok := <-lines:
			if !ok {
				// Input closed; keep playing until the library runs out.
				lines = nil
				continue
			}
			if a.handle(line).Quit {
				return nil
			}

		case cmd := <-a.remote:
			res := a.handle(cmd.Line)
			reply := remote.Reply{Message: res.Message, Quit: res.Quit}
			if cur := a.player.Current(); cur != nil {
				reply.Playing = cur.String()
			}
			cmd.Reply(reply)
			if res.Quit {
				return nil
			}

		case path, ok := <-a.added:
			if !ok {
				a.added = nil
				continue
			}
			a.addFile(path)
		}
	}

	a.player.Stop()
	a.screen.Print("Reached the end of the library")
	return nil
}

// finished reports whether the loaded song has run to its end.
func (a *app) finished() bool {
	return a.player.Current() != nil && !a.player.Playing()
}

// start plays s, moving on past songs that cannot be played.
func (a *app) start(s *song.Song) {
	for s != nil {
		err := a.player.Load(s)
		if err == nil {
			a.player.Play()
			a.log.Debug("Playing %s", s.Path)
			return
		}
		a.log.Warn("Skipping %s: %v", s.Path, err)
		a.message = fmt.Sprintf("Could not play %q", s)

		if s, err = a.engine.NextSong(); err != nil {
			return
		}
	}
}

func (a *app) handle(line string) dispatch.Result {
	res := a.dispatcher.Dispatch(line)
	if res.Next != nil {
		a.start(res.Next)
	}
	a.message = res.Message
	if !res.Quit {
		a.render()
	}
	return res
}

func (a *app) checkDownload() {
	path, msg, ok := a.dispatcher.FinishedDownload()
	if !ok {
		return
	}
	a.message = msg
	if path != "" {
		a.addFile(path)
	}
	a.render()
}

// addFile adds a song that appeared on disk while playing.
func (a *app) addFile(path string) {
	s, err := a.loader.LoadFile(path)
	if err != nil {
		a.log.Warn("Failed to load %s: %v", path, err)
		return
	}
	if a.engine.Add(s) {
		a.log.Debug("Added %s to the library", path)
	}
}

func (a *app) render() {
	a.screen.Render(terminal.Status{
		Song:    a.player.Current(),
		Elapsed: int(a.player.Time()),
		Paused:  a.player.Paused(),
		Message: a.message,
	})
}
