// Package eventlog records what the soundboard did: sounds played, requests
// dropped and commands relayed. It backs the "history" command.
package eventlog

import "time"

// EntryKind classifies a history entry.
type EntryKind int

const (
	KindPlay EntryKind = iota
	KindDrop
	KindCommand
)

// KindString returns the display name of k.
func KindString(k EntryKind) string {
	switch k {
	case KindPlay:
		return "play"
	case KindDrop:
		return "drop"
	case KindCommand:
		return "command"
	}
	return "unknown"
}

// Entry is one history row.
type Entry struct {
	Time    time.Time
	Kind    EntryKind
	Request string
	Name    string // sound file or command action
	Channel int    // -1 when no channel was involved
	Effects string
	Latency time.Duration
	Detail  string // drop reason or relay error
}

// Play describes a sound that reached a channel.
type Play struct {
	Request string
	Sound   string
	Channel int
	Effects string
	// Latency is trigger to audible start.
	Latency time.Duration
}

// Store abstracts history storage.
type Store interface {
	LogPlay(p Play) error
	LogDrop(request, sound, reason string) error
	LogCommand(action string, relayErr error) error

	Entries(days int) ([]Entry, error) // 0 = all
	Clean(days int) (int, error)       // remove entries older than days, return removed count
	Clear() error

	Path() string
	Close() error
}

// DayCutoff returns midnight N days ago (inclusive) in the local timezone.
// For days=1 it returns today at midnight, for days=7 it returns 6 days ago, etc.
func DayCutoff(days int) time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}
