package stats

import "github.com/verte-zerg/keysprint/internal/model"

// Summary aggregates stored sessions.
type Summary struct {
	Sessions    int
	Deaths      int
	AvgWPM      float64
	BestWPM     float64
	AvgRawWPM   float64
	AvgAccuracy float64
}

// Summarize averages per-session metrics.
func Summarize(sessions []model.SessionAggregate) Summary {
	sum := Summary{Sessions: len(sessions)}
	if len(sessions) == 0 {
		return sum
	}
	for _, s := range sessions {
		sum.AvgWPM += s.WPM
		sum.AvgRawWPM += s.RawWPM
		sum.AvgAccuracy += s.Accuracy
		if s.WPM > sum.BestWPM {
			sum.BestWPM = s.WPM
		}
		if s.Died {
			sum.Deaths++
		}
	}
	count := float64(len(sessions))
	sum.AvgWPM /= count
	sum.AvgRawWPM /= count
	sum.AvgAccuracy /= count
	return sum
}

// SampleSeries splits speed samples into plottable WPM and raw WPM series.
func SampleSeries(samples []model.Sample) []Series {
	if len(samples) == 0 {
		return nil
	}
	wpm := make([]float64, len(samples))
	raw := make([]float64, len(samples))
	for i, s := range samples {
		wpm[i] = s.WPM
		raw[i] = s.RawWPM
	}
	return []Series{
		{Name: "WPM", Values: wpm},
		{Name: "Raw", Values: raw},
	}
}
