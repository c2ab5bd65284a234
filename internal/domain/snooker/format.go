package snooker

import "fmt"

// Format fixes how many frames a match runs and how many reds are racked.
// BestOf must be odd so the winning threshold is unambiguous.
type Format struct {
	BestOf int
	Reds   int
}

// Known formats. League play is best-of-three on a full rack, the six-red
// variant runs best-of-five.
var (
	LeagueFormat = Format{BestOf: 3, Reds: 15}
	SixRedFormat = Format{BestOf: 5, Reds: 6}
)

// FormatByName resolves a configuration token to a known format.
func FormatByName(name string) (Format, error) {
	switch name {
	case "league":
		return LeagueFormat, nil
	case "six-red":
		return SixRedFormat, nil
	default:
		return Format{}, fmt.Errorf("%w: unknown format %q", ErrInvalidMatch, name)
	}
}

// FramesToWin is the frame count that decides the match: bestOf/2 + 1.
func (f Format) FramesToWin() int {
	return f.BestOf/2 + 1
}

func (f Format) validate() error {
	if f.BestOf <= 0 || f.BestOf%2 == 0 {
		return fmt.Errorf("%w: best-of must be a positive odd number, got %d", ErrInvalidMatch, f.BestOf)
	}
	if f.Reds <= 0 {
		return fmt.Errorf("%w: reds must be positive, got %d", ErrInvalidMatch, f.Reds)
	}
	return nil
}
