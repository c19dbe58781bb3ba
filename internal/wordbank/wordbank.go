// Package wordbank holds the server-side list of category/word pairs that
// POOL rooms fall back to when players have not contributed a usable entry.
package wordbank

import (
	"errors"
	"strings"

	"impostor/internal/roles"
)

var ErrEmpty = errors.New("word bank is empty")

type Entry struct {
	Category string
	Word     string
}

// Bank is read-only after construction and safe to share between rooms.
type Bank struct {
	entries []Entry
}

// New builds a bank, dropping blank and duplicate entries.
func New(entries []Entry) *Bank {
	seen := make(map[string]bool, len(entries))
	b := &Bank{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		e.Category = strings.TrimSpace(e.Category)
		e.Word = strings.TrimSpace(e.Word)
		if e.Category == "" || e.Word == "" {
			continue
		}
		key := strings.ToLower(e.Category + "\x00" + e.Word)
		if seen[key] {
			continue
		}
		seen[key] = true
		b.entries = append(b.entries, e)
	}
	return b
}

func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

func (b *Bank) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Bank) Random(pick roles.Picker) (Entry, error) {
	if b.Len() == 0 {
		return Entry{}, ErrEmpty
	}
	if pick == nil {
		pick = roles.CryptoPicker
	}
	i, err := pick(len(b.entries))
	if err != nil {
		return Entry{}, err
	}
	return b.entries[i], nil
}

// Default returns the built-in bank used when no database is configured.
func Default() *Bank {
	return New(defaultEntries)
}

var defaultEntries = []Entry{
	{"Animals", "Penguin"},
	{"Animals", "Giraffe"},
	{"Animals", "Octopus"},
	{"Animals", "Kangaroo"},
	{"Animals", "Hedgehog"},
	{"Food", "Pizza"},
	{"Food", "Sushi"},
	{"Food", "Paella"},
	{"Food", "Pancake"},
	{"Food", "Taco"},
	{"Places", "Beach"},
	{"Places", "Airport"},
	{"Places", "Library"},
	{"Places", "Hospital"},
	{"Places", "Museum"},
	{"Places", "Casino"},
	{"Sports", "Tennis"},
	{"Sports", "Surfing"},
	{"Sports", "Chess"},
	{"Sports", "Bowling"},
	{"Objects", "Umbrella"},
	{"Objects", "Toothbrush"},
	{"Objects", "Backpack"},
	{"Objects", "Candle"},
	{"Jobs", "Firefighter"},
	{"Jobs", "Astronaut"},
	{"Jobs", "Baker"},
	{"Jobs", "Lifeguard"},
	{"Movies", "Titanic"},
	{"Movies", "Jaws"},
	{"Instruments", "Violin"},
	{"Instruments", "Drums"},
	{"Weather", "Thunderstorm"},
	{"Weather", "Rainbow"},
}
