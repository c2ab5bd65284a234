package snooker

import (
	"strconv"
	"strings"
)

// Player is identified by its full name alone. Group is carried for fixture
// generation and candidate validation but never participates in identity,
// and never leaves the system when a player is serialized.
type Player struct {
	Name  string
	Group string
}

func NewPlayer(name, group string) Player {
	return Player{Name: strings.TrimSpace(name), Group: strings.TrimSpace(group)}
}

// SameName reports whether name refers to this player. Comparison is exact,
// matching the ledger's spelling byte for byte.
func (p Player) SameName(name string) bool {
	return p.Name == name
}

// GivenName returns the last whitespace-separated word of the full name.
// League names are written family-name first, so "Virtanen Aatos" yields
// "Aatos". A single-word name is its own given name.
func (p Player) GivenName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func (p Player) String() string {
	return p.Name
}

// MarshalJSON emits the bare name. The group is internal bookkeeping and is
// never exposed through player serialization.
func (p Player) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, p.Name), nil
}
