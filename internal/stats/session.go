package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/keysprint/internal/model"
)

// DefaultInterval is the width of a speed sample window.
const DefaultInterval = time.Second

// Compute derives the metrics of a finished session. It never fails: a
// session that never started, or one with no character events, yields
// zero-valued rates.
func Compute(rec model.SessionRecord, interval time.Duration) model.SessionResult {
	if interval <= 0 {
		interval = DefaultInterval
	}
	elapsed := time.Duration(0)
	if !rec.StartedAt.IsZero() && rec.EndedAt.After(rec.StartedAt) {
		elapsed = rec.EndedAt.Sub(rec.StartedAt)
	}

	correct, incorrect := 0, 0
	for _, ev := range rec.Events {
		switch ev.Class {
		case model.ClassCorrect:
			correct++
		case model.ClassIncorrect:
			incorrect++
		}
	}
	wpm, raw, acc := SessionMetrics(correct, incorrect, elapsed)
	samples, counts := sampleWindows(rec.Events, rec.StartedAt, elapsed, interval)

	return model.SessionResult{
		ID:          rec.ID,
		StartedAt:   rec.StartedAt,
		CompletedAt: rec.EndedAt,
		Mode:        rec.Config.Mode,
		Words:       rec.Prompt.Words,
		Seconds:     rec.Config.Seconds,
		Sentences:   rec.Config.Sentences,
		Lang:        rec.Config.Lang,
		Policy:      rec.Prompt.Policy,
		Elapsed:     elapsed,
		WPM:         wpm,
		RawWPM:      raw,
		Accuracy:    acc,
		StdDev:      stdDev(counts),
		Correct:     correct,
		Incorrect:   incorrect,
		Keystrokes:  len(rec.Events),
		Samples:     samples,
		Died:        rec.Termination == model.TerminationDied,
		Termination: rec.Termination,
		Chars:       charStats(rec),
	}
}

// sampleWindows buckets character events into interval-wide windows from
// start to start+elapsed. The last window is cut at the end of the session.
// It also returns the correct counts of the complete windows.
func sampleWindows(events []model.KeystrokeEvent, start time.Time, elapsed, interval time.Duration) ([]model.Sample, []float64) {
	if elapsed <= 0 {
		return nil, nil
	}
	n := int((elapsed + interval - 1) / interval)
	correct := make([]int, n)
	typed := make([]int, n)
	for _, ev := range events {
		if !ev.IsCharacter() {
			continue
		}
		idx := int(ev.At.Sub(start) / interval)
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		typed[idx]++
		if ev.Class == model.ClassCorrect {
			correct[idx]++
		}
	}

	samples := make([]model.Sample, n)
	var complete []float64
	for i := 0; i < n; i++ {
		from := time.Duration(i) * interval
		to := from + interval
		if to > elapsed {
			to = elapsed
		}
		wpm, raw, _ := SessionMetrics(correct[i], typed[i]-correct[i], to-from)
		samples[i] = model.Sample{Offset: to, WPM: wpm, RawWPM: raw}
		if to-from == interval {
			complete = append(complete, float64(correct[i]))
		}
	}
	return samples, complete
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)))
}

type charEntry struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// charStats aggregates judged keystrokes by the expected prompt character.
// Spaces are left out; latency is measured between consecutive correct
// keystrokes.
func charStats(rec model.SessionRecord) []model.CharStats {
	target := rec.Prompt.Runes()
	entries := map[rune]*charEntry{}
	var order []rune
	var prevCorrect time.Time
	for _, ev := range rec.Events {
		if !ev.IsCharacter() || ev.Index < 0 || ev.Index >= len(target) {
			continue
		}
		expected := target[ev.Index]
		if expected == ' ' {
			if ev.Class == model.ClassCorrect {
				prevCorrect = ev.At
			}
			continue
		}
		entry, ok := entries[expected]
		if !ok {
			entry = &charEntry{}
			entries[expected] = entry
			order = append(order, expected)
		}
		if ev.Class == model.ClassIncorrect {
			entry.incorrect++
			continue
		}
		entry.correct++
		if !prevCorrect.IsZero() {
			entry.latencySumMs += ev.At.Sub(prevCorrect).Milliseconds()
			entry.latencyCount++
		}
		prevCorrect = ev.At
	}

	out := make([]model.CharStats, 0, len(order))
	for _, ch := range order {
		entry := entries[ch]
		out = append(out, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}
