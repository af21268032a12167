// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects which condition drives the end of a test.
type Mode int

const (
	// ModeWords finishes when the prompt is typed.
	ModeWords Mode = iota
	// ModeTime finishes when the time limit elapses or the prompt is typed.
	ModeTime
	// ModeSentences finishes when a sentence prompt is typed.
	ModeSentences
)

func (m Mode) String() string {
	switch m {
	case ModeTime:
		return "time"
	case ModeSentences:
		return "sentences"
	default:
		return "words"
	}
}

// SinkPolicy decides what happens when a finished result cannot be stored.
type SinkPolicy int

const (
	// SinkWarn logs the failure and keeps the session usable.
	SinkWarn SinkPolicy = iota
	// SinkFail returns the failure to the caller.
	SinkFail
)

// ParseSinkPolicy maps a flag value to a SinkPolicy.
func ParseSinkPolicy(v string) (SinkPolicy, bool) {
	switch v {
	case "", "warn":
		return SinkWarn, true
	case "fail":
		return SinkFail, true
	default:
		return SinkWarn, false
	}
}

// Config defines test settings. It is fixed for the lifetime of a session.
type Config struct {
	Mode       Mode
	Words      int
	Seconds    int
	Sentences  int
	DeathMode  bool
	PaceWPM    int
	CustomText string

	Lang     string
	PoolSize int

	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int

	SinkPolicy SinkPolicy
}

// TimeLimit returns the configured limit, or zero when the mode has none.
func (c Config) TimeLimit() time.Duration {
	if c.Mode != ModeTime {
		return 0
	}
	return time.Duration(c.Seconds) * time.Second
}

// Policy returns the prompt policy and its numeric parameter.
func (c Config) Policy() (Policy, int) {
	switch {
	case c.CustomText != "":
		return PolicyCustom, 0
	case c.Mode == ModeSentences:
		return PolicySentences, c.Sentences
	default:
		return PolicyWords, c.Words
	}
}

// Validate reports the first invalid or contradictory setting.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeWords:
		if c.CustomText == "" && c.Words <= 0 {
			return &ConfigError{Field: "words", Reason: "must be > 0"}
		}
	case ModeTime:
		if c.Seconds <= 0 {
			return &ConfigError{Field: "seconds", Reason: "must be > 0"}
		}
		if c.CustomText == "" && c.Words <= 0 {
			return &ConfigError{Field: "words", Reason: "must be > 0"}
		}
	case ModeSentences:
		if c.CustomText == "" && c.Sentences <= 0 {
			return &ConfigError{Field: "sentences", Reason: "must be > 0"}
		}
	default:
		return &ConfigError{Field: "mode", Reason: "unknown mode"}
	}
	if c.PaceWPM < 0 {
		return &ConfigError{Field: "pace", Reason: "must be >= 0"}
	}
	if c.PoolSize < 0 {
		return &ConfigError{Field: "pool-size", Reason: "must be >= 0"}
	}
	if c.CapsPct < 0 || c.CapsPct > 1 {
		return &ConfigError{Field: "caps", Reason: "must be between 0 and 1"}
	}
	if c.PunctPct < 0 || c.PunctPct > 1 {
		return &ConfigError{Field: "punct", Reason: "must be between 0 and 1"}
	}
	if c.PunctPct > 0 && c.PunctSet == "" {
		return &ConfigError{Field: "punct-set", Reason: "must not be empty"}
	}
	if c.WeakTop < 0 {
		return &ConfigError{Field: "weak-top", Reason: "must be >= 0"}
	}
	if c.WeakFactor < 0 {
		return &ConfigError{Field: "weak-factor", Reason: "must be >= 0"}
	}
	if c.WeakWindow < 0 {
		return &ConfigError{Field: "weak-window", Reason: "must be >= 0"}
	}
	return nil
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// Termination records why a session finished.
type Termination int

const (
	TerminationNone Termination = iota
	TerminationCompleted
	TerminationTimedOut
	TerminationDied
	TerminationAborted
)

func (t Termination) String() string {
	switch t {
	case TerminationCompleted:
		return "completed"
	case TerminationTimedOut:
		return "timed-out"
	case TerminationDied:
		return "died"
	case TerminationAborted:
		return "aborted"
	default:
		return "none"
	}
}

// SessionRecord is a read-only snapshot of a finished session.
type SessionRecord struct {
	ID          uuid.UUID
	Prompt      Prompt
	Config      Config
	Events      []KeystrokeEvent
	StartedAt   time.Time
	EndedAt     time.Time
	Termination Termination
}

// Sample is the typing speed inside one interval of a session.
type Sample struct {
	Offset time.Duration
	WPM    float64
	RawWPM float64
}

// SessionResult captures the metrics of a finished session.
type SessionResult struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt time.Time
	Mode        Mode
	Words       int
	Seconds     int
	Sentences   int
	Lang        string
	Policy      Policy

	Elapsed    time.Duration
	WPM        float64
	RawWPM     float64
	Accuracy   float64
	StdDev     float64
	Correct    int
	Incorrect  int
	Keystrokes int

	Samples     []Sample
	Died        bool
	Termination Termination
	Chars       []CharStats
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// Aggregated per-char stats for selection or reporting.

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  string
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
	WPM        float64
	RawWPM     float64
	Accuracy   float64
	Died       bool
}
