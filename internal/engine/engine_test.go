package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/prompt"
)

var t0 = time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	results []model.SessionResult
	err     error
}

func (s *recordingSink) Record(_ context.Context, res model.SessionResult) error {
	s.results = append(s.results, res)
	return s.err
}

func newGenerator() *prompt.Generator {
	return prompt.New(rand.New(rand.NewSource(42)))
}

func customController(t *testing.T, cfg model.Config, opts ...Option) *Controller {
	t.Helper()
	c, err := New(cfg, nil, newGenerator(), opts...)
	require.NoError(t, err)
	return c
}

func typeText(t *testing.T, c *Controller, text string, at func(i int) time.Time) {
	t.Helper()
	for i, r := range []rune(text) {
		_, err := c.Key(model.Char(r, at(i)))
		require.NoError(t, err)
	}
}

func TestCompletedSessionMetrics(t *testing.T) {
	sink := &recordingSink{}
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "the cat sat"}, WithSink(sink))
	assert.IsType(t, Idle{}, c.State())

	// 11 characters spread so the last lands exactly one minute in.
	typeText(t, c, "the cat sat", func(i int) time.Time { return t0.Add(time.Duration(i) * 6 * time.Second) })

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.TerminationCompleted, res.Termination)
	assert.Equal(t, time.Minute, res.Elapsed)
	assert.InDelta(t, 2.2, res.WPM, 1e-9)
	assert.InDelta(t, 2.2, res.RawWPM, 1e-9)
	assert.Equal(t, 1.0, res.Accuracy)
	assert.Len(t, res.Samples, 60)
	require.Len(t, sink.results, 1)
	assert.Equal(t, res.ID, sink.results[0].ID)
}

func TestFirstKeystrokeStartsTimer(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "ab"})

	outcome, err := c.Key(model.Char('a', t0.Add(3*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeAdvanced, outcome)
	st, ok := c.State().(Running)
	require.True(t, ok)
	assert.Equal(t, t0.Add(3*time.Second), st.StartedAt)
	assert.Equal(t, 2*time.Second, c.Elapsed(t0.Add(5*time.Second)))
}

func TestDeathModeFinishesOnFirstError(t *testing.T) {
	sink := &recordingSink{}
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "hello", DeathMode: true}, WithSink(sink))

	_, err := c.Key(model.Char('h', t0))
	require.NoError(t, err)
	outcome, err := c.Key(model.Char('x', t0.Add(500*time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeMismatched, outcome)

	res, ok := c.Result()
	require.True(t, ok)
	assert.True(t, res.Died)
	assert.Equal(t, model.TerminationDied, res.Termination)
	assert.Equal(t, 0.5, res.Accuracy)
	assert.Equal(t, 1, c.Cursor())
	assert.Len(t, sink.results, 1)
}

func TestMistakeWithoutDeathModeKeepsRunning(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "hello"})

	_, err := c.Key(model.Char('x', t0))
	require.NoError(t, err)
	assert.IsType(t, Running{}, c.State())
	r, ok := c.Marker(0)
	assert.True(t, ok)
	assert.Equal(t, 'x', r)
	assert.Equal(t, 0, c.Cursor())
}

func TestTimeLimitFinishesOnTick(t *testing.T) {
	sink := &recordingSink{}
	c := customController(t, model.Config{Mode: model.ModeTime, Seconds: 5, CustomText: "abcdefghij"}, WithSink(sink))

	typeText(t, c, "abc", func(i int) time.Time { return t0.Add(time.Duration(i) * time.Second) })
	require.NoError(t, c.Tick(t0.Add(4*time.Second)))
	assert.IsType(t, Running{}, c.State())

	left, ok := c.Remaining(t0.Add(4 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, time.Second, left)

	require.NoError(t, c.Tick(t0.Add(5*time.Second+50*time.Millisecond)))
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.TerminationTimedOut, res.Termination)
	assert.Equal(t, 5*time.Second, res.Elapsed)
	assert.Equal(t, 3, c.Cursor())
	assert.Equal(t, 3, res.Correct)
	assert.Len(t, sink.results, 1)

	// Further ticks and keys are ignored once finished.
	require.NoError(t, c.Tick(t0.Add(10*time.Second)))
	outcome, err := c.Key(model.Char('d', t0.Add(11*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoOp, outcome)
	assert.Len(t, sink.results, 1)
	assert.Len(t, c.History(), 3)
}

func TestCompletionWinsOverExpiredLimit(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeTime, Seconds: 2, CustomText: "ab"})

	_, err := c.Key(model.Char('a', t0))
	require.NoError(t, err)
	outcome, err := c.Key(model.Char('b', t0.Add(2*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomePromptCompleted, outcome)

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.TerminationCompleted, res.Termination)
	assert.Equal(t, 2*time.Second, res.Elapsed)
}

func TestKeyAfterDeadlineTimesOut(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeTime, Seconds: 2, CustomText: "abc"})

	_, err := c.Key(model.Char('a', t0))
	require.NoError(t, err)
	outcome, err := c.Key(model.Char('b', t0.Add(3*time.Second)))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoOp, outcome)

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.TerminationTimedOut, res.Termination)
	assert.Equal(t, 2*time.Second, res.Elapsed)
	assert.Equal(t, 1, c.Cursor())
}

func TestBackspaceAtStartIsRecorded(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "ab"})

	outcome, err := c.Key(model.Backspace(t0))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoOp, outcome)
	assert.IsType(t, Idle{}, c.State())

	typeText(t, c, "ab", func(i int) time.Time { return t0.Add(time.Duration(i+1) * time.Second) })
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, 3, res.Keystrokes)
	assert.Equal(t, 2, c.Cursor())
}

func TestAbort(t *testing.T) {
	sink := &recordingSink{}
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "abc"}, WithSink(sink))

	require.NoError(t, c.Abort(t0))
	assert.IsType(t, Idle{}, c.State())
	assert.Empty(t, sink.results)

	_, err := c.Key(model.Char('a', t0))
	require.NoError(t, err)
	require.NoError(t, c.Abort(t0.Add(time.Second)))
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, model.TerminationAborted, res.Termination)
	assert.Equal(t, time.Second, res.Elapsed)
	assert.Len(t, sink.results, 1)
}

func TestRestartKeepsPrompt(t *testing.T) {
	pool := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	next := 0
	c, err := New(model.Config{Mode: model.ModeWords, Words: 5}, pool, newGenerator(),
		WithIDSource(func() uuid.UUID {
			id := ids[next]
			next++
			return id
		}))
	require.NoError(t, err)
	before := c.Prompt()

	_, err = c.Key(model.Char('z', t0))
	require.NoError(t, err)
	c.Restart()

	assert.Equal(t, before, c.Prompt())
	assert.IsType(t, Idle{}, c.State())
	assert.Equal(t, 0, c.Cursor())
	assert.Empty(t, c.History())
	_, ok := c.Marker(0)
	assert.False(t, ok)

	typeText(t, c, before.Text, func(i int) time.Time { return t0.Add(time.Duration(i) * time.Second) })
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, ids[1], res.ID)
}

func TestNewPromptRegenerates(t *testing.T) {
	pool := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	c, err := New(model.Config{Mode: model.ModeWords, Words: 8}, pool, newGenerator())
	require.NoError(t, err)
	before := c.Prompt()

	require.NoError(t, c.NewPrompt())
	assert.NotEqual(t, before.Text, c.Prompt().Text)
	assert.Equal(t, 8, c.Prompt().Words)
	assert.IsType(t, Idle{}, c.State())
}

func TestNewPromptKeepsCustomText(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "fixed text"})
	require.NoError(t, c.NewPrompt())
	assert.Equal(t, "fixed text", c.Prompt().Text)
}

func TestSinkPolicy(t *testing.T) {
	failing := errors.New("disk full")

	t.Run("warn", func(t *testing.T) {
		sink := &recordingSink{err: failing}
		c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "a"}, WithSink(sink))
		_, err := c.Key(model.Char('a', t0))
		require.NoError(t, err)
		_, ok := c.Result()
		assert.True(t, ok)
	})

	t.Run("fail", func(t *testing.T) {
		sink := &recordingSink{err: failing}
		c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "a", SinkPolicy: model.SinkFail}, WithSink(sink))
		_, err := c.Key(model.Char('a', t0))
		require.ErrorIs(t, err, failing)
		_, ok := c.Result()
		assert.True(t, ok)
		assert.Len(t, sink.results, 1)
	})
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(model.Config{Mode: model.ModeWords}, []string{"a"}, newGenerator())
	require.ErrorIs(t, err, model.ErrConfig)

	_, err = New(model.Config{Mode: model.ModeWords, Words: 3}, nil, newGenerator())
	require.ErrorIs(t, err, model.ErrConfig)
}

func TestPacePosition(t *testing.T) {
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "abcdefghijklmnopqrst", PaceWPM: 60})

	_, ok := c.PacePosition(t0)
	assert.True(t, ok)
	_, err := c.Key(model.Char('a', t0))
	require.NoError(t, err)

	pos, ok := c.PacePosition(t0.Add(2 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, 10, pos)
	pos, _ = c.PacePosition(t0.Add(time.Minute))
	assert.Equal(t, 20, pos)

	off := customController(t, model.Config{Mode: model.ModeWords, CustomText: "abc"})
	_, ok = off.PacePosition(t0)
	assert.False(t, ok)
}

func TestSinksRecordsToAll(t *testing.T) {
	failing := errors.New("locked")
	first := &recordingSink{err: failing}
	second := &recordingSink{}
	c := customController(t, model.Config{Mode: model.ModeWords, CustomText: "a", SinkPolicy: model.SinkFail},
		WithSink(Sinks{first, nil, second}))

	_, err := c.Key(model.Char('a', t0))
	require.ErrorIs(t, err, failing)
	assert.Len(t, first.results, 1)
	assert.Len(t, second.results, 1)
}
