package engine

import (
	"time"

	"github.com/verte-zerg/keysprint/internal/model"
)

// State is one of Idle, Running or Finished.
type State interface {
	isState()
	String() string
}

// Idle waits for the first keystroke. No timer runs.
type Idle struct{}

// Running has a started timer.
type Running struct {
	StartedAt time.Time
}

// Finished is terminal until Restart or NewPrompt.
type Finished struct {
	StartedAt time.Time
	EndedAt   time.Time
	Result    model.SessionResult
}

func (Idle) isState()     {}
func (Running) isState()  {}
func (Finished) isState() {}

func (Idle) String() string     { return "idle" }
func (Running) String() string  { return "running" }
func (Finished) String() string { return "finished" }
