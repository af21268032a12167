// Package pace computes the position of a cursor moving at a fixed speed.
package pace

import (
	"math"
	"time"
)

// charsPerWord is the standard word length used by WPM figures.
const charsPerWord = 5

// Cursor advances through a prompt at WPM words per minute. It is display
// guidance only and never affects scoring.
type Cursor struct {
	WPM       int
	PromptLen int
}

// Enabled reports whether a pace target is configured.
func (c Cursor) Enabled() bool {
	return c.WPM > 0
}

// PositionAt returns the character index reached after elapsed time.
func (c Cursor) PositionAt(elapsed time.Duration) (int, bool) {
	if !c.Enabled() {
		return 0, false
	}
	if elapsed <= 0 {
		return 0, true
	}
	idx := int(math.Floor(elapsed.Seconds() * float64(c.WPM) / 60 * charsPerWord))
	if idx > c.PromptLen {
		idx = c.PromptLen
	}
	return idx, true
}
