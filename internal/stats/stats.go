// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
	"time"
)

const (
	sparkChars   = " .:-=+*#%@"
	charsPerWord = 5.0
)

// SessionMetrics computes corrected WPM, raw WPM and accuracy for a count of
// correct and incorrect characters typed over elapsed. Zero denominators
// yield zero.
func SessionMetrics(correct, incorrect int, elapsed time.Duration) (wpm, rawWPM, accuracy float64) {
	total := correct + incorrect
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0, 0, accuracy
	}
	wpm = (float64(correct) / charsPerWord) / minutes
	rawWPM = (float64(total) / charsPerWord) / minutes
	return wpm, rawWPM, accuracy
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
