package model

import "unicode/utf8"

// Policy describes how a prompt was produced.
type Policy int

const (
	PolicyWords Policy = iota
	PolicySentences
	PolicyCustom
)

func (p Policy) String() string {
	switch p {
	case PolicySentences:
		return "sentences"
	case PolicyCustom:
		return "custom"
	default:
		return "words"
	}
}

// Prompt is the target text of a session.
type Prompt struct {
	Text   string
	Policy Policy
	Words  int
}

// Runes returns the prompt characters.
func (p Prompt) Runes() []rune {
	return []rune(p.Text)
}

// Len returns the number of characters in the prompt.
func (p Prompt) Len() int {
	return utf8.RuneCountInString(p.Text)
}
