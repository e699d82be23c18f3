// Package session keeps each user's recent conversation turns.
package session

import "github.com/xaenox/school-bot/internal/models"

const (
	DefaultMaxTurns     = 10
	DefaultContextTurns = 5
)

// Window is a bounded, chronological list of turns. It is a value: Append
// returns a new Window and never modifies the receiver.
type Window struct {
	turns []models.Turn
	max   int
}

// NewWindow returns an empty window holding at most max turns.
func NewWindow(max int) Window {
	if max <= 0 {
		max = DefaultMaxTurns
	}
	return Window{max: max}
}

// WindowOf builds a window from stored turns, keeping the newest max.
func WindowOf(max int, turns []models.Turn) Window {
	w := NewWindow(max)
	for _, t := range turns {
		w = w.Append(t)
	}
	return w
}

// Append adds a turn, evicting the oldest ones beyond the cap.
func (w Window) Append(t models.Turn) Window {
	max := w.max
	if max <= 0 {
		max = DefaultMaxTurns
	}
	start := 0
	if len(w.turns)+1 > max {
		start = len(w.turns) + 1 - max
	}
	turns := make([]models.Turn, 0, len(w.turns)-start+1)
	turns = append(turns, w.turns[start:]...)
	turns = append(turns, t)
	return Window{turns: turns, max: max}
}

// Recent returns up to the last n turns, oldest first.
func (w Window) Recent(n int) []models.Turn {
	if n <= 0 {
		return nil
	}
	start := len(w.turns) - n
	if start < 0 {
		start = 0
	}
	return append([]models.Turn(nil), w.turns[start:]...)
}

// Turns returns a copy of all turns, oldest first.
func (w Window) Turns() []models.Turn {
	return append([]models.Turn(nil), w.turns...)
}

func (w Window) Len() int { return len(w.turns) }

func (w Window) Cap() int {
	if w.max <= 0 {
		return DefaultMaxTurns
	}
	return w.max
}
