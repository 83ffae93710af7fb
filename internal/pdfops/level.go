package pdfops

import "fmt"

// Level selects how aggressively a merged document is rewritten before
// serialization.
type Level string

const (
	LevelNone  Level = "none"
	LevelLight Level = "light"
	LevelFull  Level = "full"
)

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelNone:
		return LevelNone, nil
	case LevelLight:
		return LevelLight, nil
	case LevelFull:
		return LevelFull, nil
	default:
		return "", fmt.Errorf("unknown optimization level %q (want none, light, or full)", s)
	}
}
