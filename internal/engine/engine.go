// Package engine runs the lifecycle of a typing test: it owns the active
// session, feeds keystrokes to the tracker, enforces the finish conditions
// and hands the computed result to a sink exactly once.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/pace"
	"github.com/verte-zerg/keysprint/internal/prompt"
	"github.com/verte-zerg/keysprint/internal/stats"
	"github.com/verte-zerg/keysprint/internal/tracker"
)

// Option configures a Controller.
type Option func(*Controller)

// WithSink sets the destination of finished results.
func WithSink(s Sink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// WithLogger sets the logger used for sink warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithInterval sets the width of speed sample windows.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.interval = d
	}
}

// WithIDSource replaces the generator of session ids.
func WithIDSource(next func() uuid.UUID) Option {
	return func(c *Controller) {
		c.newID = next
	}
}

// Controller is the state machine of one test at a time. It is not safe for
// concurrent use; the input loop delivers events sequentially.
type Controller struct {
	cfg  model.Config
	pool []string
	gen  *prompt.Generator

	prompt  model.Prompt
	tracker *tracker.Tracker
	state   State
	id      uuid.UUID

	sink     Sink
	log      zerolog.Logger
	interval time.Duration
	newID    func() uuid.UUID
}

// New validates cfg, generates the first prompt and returns an idle controller.
func New(cfg model.Config, pool []string, gen *prompt.Generator, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:      cfg,
		pool:     pool,
		gen:      gen,
		log:      zerolog.Nop(),
		interval: stats.DefaultInterval,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(c)
	}
	p, err := c.generate()
	if err != nil {
		return nil, err
	}
	c.reset(p)
	return c, nil
}

func (c *Controller) generate() (model.Prompt, error) {
	policy, parameter := c.cfg.Policy()
	return c.gen.Generate(policy, parameter, c.pool, c.cfg.CustomText)
}

func (c *Controller) reset(p model.Prompt) {
	c.prompt = p
	c.tracker = tracker.New(p)
	c.state = Idle{}
	c.id = c.newID()
}

// Key applies one keystroke. The returned error is only non-nil when the
// keystroke finished the session and the sink failed under SinkFail.
func (c *Controller) Key(k model.Key) (model.Outcome, error) {
	switch st := c.state.(type) {
	case Idle:
		outcome := c.tracker.Apply(k)
		if outcome == model.OutcomeNoOp {
			return outcome, nil
		}
		c.state = Running{StartedAt: k.At}
		return outcome, c.settle(outcome, k.At)
	case Running:
		if deadline, ok := c.deadline(st); ok && !k.At.Before(deadline) {
			// Completing the prompt wins over an expired limit.
			if k.Action != model.ActionChar || !c.tracker.Completes(k.Rune) {
				return model.OutcomeNoOp, c.finish(model.TerminationTimedOut, deadline)
			}
		}
		outcome := c.tracker.Apply(k)
		return outcome, c.settle(outcome, k.At)
	default:
		return model.OutcomeNoOp, nil
	}
}

func (c *Controller) settle(outcome model.Outcome, at time.Time) error {
	switch {
	case outcome == model.OutcomePromptCompleted:
		return c.finish(model.TerminationCompleted, at)
	case outcome == model.OutcomeMismatched && c.cfg.DeathMode:
		return c.finish(model.TerminationDied, at)
	}
	return nil
}

// Tick checks the time limit against now.
func (c *Controller) Tick(now time.Time) error {
	st, ok := c.state.(Running)
	if !ok {
		return nil
	}
	if deadline, ok := c.deadline(st); ok && !now.Before(deadline) {
		return c.finish(model.TerminationTimedOut, deadline)
	}
	return nil
}

// Abort finishes a running session at now. It does nothing in other states.
func (c *Controller) Abort(now time.Time) error {
	if _, ok := c.state.(Running); !ok {
		return nil
	}
	return c.finish(model.TerminationAborted, now)
}

// Restart discards the attempt and returns to Idle with the same prompt.
func (c *Controller) Restart() {
	c.reset(c.prompt)
}

// NewPrompt discards the attempt and returns to Idle with a freshly
// generated prompt. A custom prompt is kept as is.
func (c *Controller) NewPrompt() error {
	if c.prompt.Policy == model.PolicyCustom {
		c.Restart()
		return nil
	}
	p, err := c.generate()
	if err != nil {
		return err
	}
	c.reset(p)
	return nil
}

func (c *Controller) deadline(st Running) (time.Time, bool) {
	limit := c.cfg.TimeLimit()
	if limit <= 0 {
		return time.Time{}, false
	}
	return st.StartedAt.Add(limit), true
}

func (c *Controller) finish(term model.Termination, end time.Time) error {
	st, ok := c.state.(Running)
	if !ok {
		return nil
	}
	rec := model.SessionRecord{
		ID:          c.id,
		Prompt:      c.prompt,
		Config:      c.cfg,
		Events:      c.tracker.History(),
		StartedAt:   st.StartedAt,
		EndedAt:     end,
		Termination: term,
	}
	res := stats.Compute(rec, c.interval)
	c.state = Finished{StartedAt: st.StartedAt, EndedAt: end, Result: res}
	c.log.Debug().
		Str("session", res.ID.String()).
		Str("termination", term.String()).
		Float64("wpm", res.WPM).
		Float64("accuracy", res.Accuracy).
		Msg("session finished")

	if c.sink == nil {
		return nil
	}
	if err := c.sink.Record(context.Background(), res); err != nil {
		if c.cfg.SinkPolicy == model.SinkFail {
			return fmt.Errorf("failed to record session: %w", err)
		}
		c.log.Warn().Err(err).Str("session", res.ID.String()).Msg("failed to record session")
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Prompt returns the active prompt.
func (c *Controller) Prompt() model.Prompt {
	return c.prompt
}

// Config returns the session configuration.
func (c *Controller) Config() model.Config {
	return c.cfg
}

// Cursor returns the number of settled prompt characters.
func (c *Controller) Cursor() int {
	return c.tracker.Cursor()
}

// Marker returns the mistyped rune displayed at prompt position i.
func (c *Controller) Marker(i int) (rune, bool) {
	return c.tracker.Marker(i)
}

// History returns the recorded keystrokes of the current attempt.
func (c *Controller) History() []model.KeystrokeEvent {
	return c.tracker.History()
}

// Result returns the finished session's result.
func (c *Controller) Result() (model.SessionResult, bool) {
	st, ok := c.state.(Finished)
	if !ok {
		return model.SessionResult{}, false
	}
	return st.Result, true
}

// Elapsed returns the running time of the session at now.
func (c *Controller) Elapsed(now time.Time) time.Duration {
	switch st := c.state.(type) {
	case Running:
		if now.Before(st.StartedAt) {
			return 0
		}
		return now.Sub(st.StartedAt)
	case Finished:
		return st.Result.Elapsed
	default:
		return 0
	}
}

// Remaining returns the time left before the limit. ok is false without a
// time limit.
func (c *Controller) Remaining(now time.Time) (time.Duration, bool) {
	limit := c.cfg.TimeLimit()
	if limit <= 0 {
		return 0, false
	}
	left := limit - c.Elapsed(now)
	if left < 0 {
		left = 0
	}
	return left, true
}

// PacePosition returns where the pace cursor is at now. ok is false when no
// pace is configured.
func (c *Controller) PacePosition(now time.Time) (int, bool) {
	cursor := pace.Cursor{WPM: c.cfg.PaceWPM, PromptLen: c.prompt.Len()}
	return cursor.PositionAt(c.Elapsed(now))
}
