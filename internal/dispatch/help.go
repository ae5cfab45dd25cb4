package dispatch

import (
	"fmt"
	"strings"
)

type helpEntry struct {
	name    string
	usage   string
	summary string
	detail  string
}

var commandHelp = []helpEntry{
	{"help", "help [<command>]", "show commands, or details for one command", ""},
	{"stop", "stop", "quit the player", ""},
	{"columns", "columns", "list the columns songs can be searched and sorted by", ""},
	{"skip", "skip", "play the next song", ""},
	{"back", "back", "play the previous song", "The song that was playing moves to the front of the queue unless the queue is empty."},
	{"delete", "delete [-perm] <song>", "remove a song from the library", "With -perm the file is deleted from disk as well."},
	{"next", "next <song>", "play a song after the current one", ""},
	{"jump", "jump <song>", "play a song now", "The queue is kept and plays after the song."},
	{"repeat", "repeat", "play the current song again after it ends", ""},
	{"restart", "restart", "start the current song over", ""},
	{"time", "time [<t>]", "show the playback time, or seek to t", "t is given in seconds or as m:ss."},
	{"forward", "forward [<n>]", "skip ahead n seconds (default 5)", ""},
	{"backward", "backward [<n>]", "skip back n seconds (default 5)", ""},
	{"info", "info", "show everything known about the current song", ""},
	{"queue", "queue [<song>]", "show the queue, or add a song to its end", ""},
	{"dequeue", "dequeue [-all] <song>", "remove a song from the queue", "Only the first occurrence is removed unless -all is given."},
	{"context", "context [-prev|-next] [<n>]", "show the songs around the current one in library order", "n defaults to 5."},
	{"sort", "sort [-reverse] <column>", "sort the library by a column", "Songs without a value for the column come first. The queue is kept."},
	{"shuffle", "shuffle", "put the library in random order", "The queue is kept."},
	{"search", "search <song>", "look songs up without playing them", ""},
	{"tag", "tag <song fields>", "change the tags of the current song", "Uses the same fields as a song reference, e.g. tag -album \"Discovery\" -year 2001."},
	{"lyrics", "lyrics", "show the lyrics of the current song", "Lyrics are looked up on lrclib.net."},
	{"volume", "volume [<0-100>]", "show or set the volume", ""},
	{"pause", "pause", "pause playback", ""},
	{"unpause", "unpause", "resume playback", ""},
	{"download", "download <query> | <n> | -cancel | -status", "search for a song online and download it", "download <query> lists results; download <n> downloads result n into the library in the background. Only one download runs at a time."},
}

const songHelp = `A <song> is either "<title>" or "<title> - <artist>", or a list of
-<column> "<value>" pairs such as -artist "daft punk" -year 2001.
Values match the start of a column, ignoring case.`

func findHelp(name string) (helpEntry, bool) {
	for _, h := range commandHelp {
		if h.name == name {
			return h, true
		}
	}
	return helpEntry{}, false
}

func helpText(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		var b strings.Builder
		b.WriteString("Commands:\n")
		for _, h := range commandHelp {
			fmt.Fprintf(&b, "  %-44s %s\n", h.usage, h.summary)
		}
		b.WriteString("\n")
		b.WriteString(songHelp)
		return b.String()
	}

	h, ok := findHelp(name)
	if !ok {
		return unknownCommand(name)
	}
	text := h.usage + "\n  " + h.summary
	if h.detail != "" {
		text += "\n  " + h.detail
	}
	if strings.Contains(h.usage, "<song") {
		text += "\n\n" + songHelp
	}
	return text
}

func unknownCommand(name string) string {
	return fmt.Sprintf("Unrecognized command %q; type \"help\" for a list of commands", name)
}
