// Package tracker judges keystrokes against a prompt.
package tracker

import (
	"unicode"

	"github.com/verte-zerg/keysprint/internal/model"
)

// Tracker holds the cursor, error markers and keystroke history of one
// attempt at a prompt.
type Tracker struct {
	target  []rune
	cursor  int
	markers map[int]rune
	history []model.KeystrokeEvent
}

// New returns a Tracker for prompt.
func New(prompt model.Prompt) *Tracker {
	return &Tracker{
		target:  prompt.Runes(),
		markers: map[int]rune{},
	}
}

// Reset clears the cursor, markers and history.
func (t *Tracker) Reset() {
	t.cursor = 0
	t.markers = map[int]rune{}
	t.history = nil
}

// Cursor returns the number of settled characters.
func (t *Tracker) Cursor() int {
	return t.cursor
}

// Len returns the prompt length in characters.
func (t *Tracker) Len() int {
	return len(t.target)
}

// Done reports whether every prompt character is settled.
func (t *Tracker) Done() bool {
	return t.cursor == len(t.target)
}

// Marker returns the mistyped rune shown at position i, if any.
func (t *Tracker) Marker(i int) (rune, bool) {
	r, ok := t.markers[i]
	return r, ok
}

// History returns a copy of the recorded keystrokes.
func (t *Tracker) History() []model.KeystrokeEvent {
	out := make([]model.KeystrokeEvent, len(t.history))
	copy(out, t.history)
	return out
}

// Completes reports whether typing r now would settle the final character.
func (t *Tracker) Completes(r rune) bool {
	return t.cursor == len(t.target)-1 && t.target[t.cursor] == r
}

// Apply judges one keystroke and records it.
func (t *Tracker) Apply(key model.Key) model.Outcome {
	ev := model.KeystrokeEvent{
		Index:  t.cursor,
		Action: key.Action,
		Rune:   key.Rune,
		At:     key.At,
	}
	switch key.Action {
	case model.ActionChar:
		ev.Class, ev.Outcome = t.char(key.Rune)
	case model.ActionBackspace:
		ev.Outcome = t.backspace()
	case model.ActionWordBackspace:
		ev.Outcome = t.wordBackspace()
	default:
		ev.Class = model.ClassIgnored
	}
	t.history = append(t.history, ev)
	return ev.Outcome
}

func (t *Tracker) char(r rune) (model.Class, model.Outcome) {
	if t.cursor >= len(t.target) {
		return model.ClassIgnored, model.OutcomeNoOp
	}
	expected := t.target[t.cursor]
	if unicode.IsControl(r) && r != expected {
		return model.ClassIgnored, model.OutcomeNoOp
	}
	if r != expected {
		t.markers[t.cursor] = r
		return model.ClassIncorrect, model.OutcomeMismatched
	}
	delete(t.markers, t.cursor)
	t.cursor++
	if t.cursor == len(t.target) {
		return model.ClassCorrect, model.OutcomePromptCompleted
	}
	return model.ClassCorrect, model.OutcomeAdvanced
}

func (t *Tracker) backspace() model.Outcome {
	if t.cursor == 0 {
		return model.OutcomeNoOp
	}
	delete(t.markers, t.cursor)
	t.cursor--
	delete(t.markers, t.cursor)
	return model.OutcomeBackedUp
}

func (t *Tracker) wordBackspace() model.Outcome {
	if t.cursor == 0 {
		return model.OutcomeNoOp
	}
	delete(t.markers, t.cursor)
	for t.cursor > 0 && unicode.IsSpace(t.target[t.cursor-1]) {
		t.cursor--
	}
	for t.cursor > 0 && !unicode.IsSpace(t.target[t.cursor-1]) {
		t.cursor--
	}
	delete(t.markers, t.cursor)
	return model.OutcomeBackedUp
}
