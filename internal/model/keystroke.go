package model

import "time"

// Action is the kind of a keystroke.
type Action int

const (
	ActionChar Action = iota
	ActionBackspace
	ActionWordBackspace
)

// Class is the correctness classification of a recorded keystroke.
type Class int

const (
	// ClassNone marks editing keystrokes that are not judged.
	ClassNone Class = iota
	ClassCorrect
	ClassIncorrect
	// ClassIgnored marks character keystrokes outside the recognized set.
	ClassIgnored
)

// Outcome is the tracker's reaction to a keystroke.
type Outcome int

const (
	OutcomeNoOp Outcome = iota
	OutcomeAdvanced
	OutcomeBackedUp
	OutcomeMismatched
	OutcomePromptCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeBackedUp:
		return "backed-up"
	case OutcomeMismatched:
		return "mismatched"
	case OutcomePromptCompleted:
		return "prompt-completed"
	default:
		return "no-op"
	}
}

// Key is a keystroke delivered by the input loop.
type Key struct {
	Action Action
	Rune   rune
	At     time.Time
}

// Char builds a character keystroke.
func Char(r rune, at time.Time) Key {
	return Key{Action: ActionChar, Rune: r, At: at}
}

// Backspace builds a backspace keystroke.
func Backspace(at time.Time) Key {
	return Key{Action: ActionBackspace, At: at}
}

// WordBackspace builds a keystroke that erases the previous word.
func WordBackspace(at time.Time) Key {
	return Key{Action: ActionWordBackspace, At: at}
}

// KeystrokeEvent is one recorded keystroke. Events are never rewritten.
type KeystrokeEvent struct {
	Index   int
	Action  Action
	Rune    rune
	At      time.Time
	Class   Class
	Outcome Outcome
}

// IsCharacter reports whether the event counts toward typing metrics.
func (e KeystrokeEvent) IsCharacter() bool {
	return e.Class == ClassCorrect || e.Class == ClassIncorrect
}
