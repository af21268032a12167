package stats

import (
	"fmt"
	"io"
	"slices"

	"github.com/verte-zerg/keysprint/internal/model"
)

// printer remembers the first write error so sections can be written
// without checking every line.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

// RenderSummary prints the aggregate of sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	p := &printer{w: w}
	if len(sessions) == 0 {
		p.line("No sessions found.")
		return p.err
	}
	sum := Summarize(sessions)
	p.line("Summary")
	p.line("Sessions: %d (deaths: %d)", sum.Sessions, sum.Deaths)
	p.line("Avg WPM: %.2f", sum.AvgWPM)
	p.line("Best WPM: %.2f", sum.BestWPM)
	p.line("Avg Raw WPM: %.2f", sum.AvgRawWPM)
	p.line("Avg Accuracy: %.2f%%", sum.AvgAccuracy*100)
	p.line("")
	return p.err
}

func plotWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 0
	}
	return PlotWidthFor(totalWidth)
}

// RenderCurvesWithSize plots moving averages of WPM and accuracy across
// sessions.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i] = s.WPM
		accs[i] = s.Accuracy * 100
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}, plotWidth(totalWidth), height, useColor)
}

// RenderSpeedCurve plots the speed samples of one session.
func RenderSpeedCurve(w io.Writer, samples []model.Sample, totalWidth, height int, useColor bool) error {
	return PlotSeriesWithColor(w, "Last Session Speed", SampleSeries(samples), plotWidth(totalWidth), height, useColor)
}

// RenderCharTable prints per-character aggregates, least accurate first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	p := &printer{w: w}
	if len(aggs) == 0 {
		p.line("No character stats found.")
		return p.err
	}
	sorted := slices.Clone(aggs)
	slices.SortFunc(sorted, byAccuracy)

	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		label := agg.Char
		if label == " " {
			label = "<space>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.2f%%", charAccuracy(agg)*100),
			fmt.Sprintf("%.1f", charLatency(agg)),
			fmt.Sprint(agg.Correct),
			fmt.Sprint(agg.Incorrect),
		})
	}
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}

	p.line("Per-Character (Windowed)")
	for _, l := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		p.line("%s", l)
	}
	p.line("")
	return p.err
}

// RenderCharCurvesWithSize plots the accuracy of each selected character
// across sessions.
func RenderCharCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.CharAggregate, chars []string, window, totalWidth, height int, useColor bool) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	p := &printer{w: w}
	p.line("Per-Character Curves")
	if p.err != nil {
		return p.err
	}
	for _, ch := range chars {
		accs := make([]float64, len(sessions))
		var total model.CharAggregate
		for i, s := range sessions {
			agg, ok := perSession[s.SessionID][ch]
			if !ok {
				continue
			}
			if agg.Correct+agg.Incorrect > 0 {
				accs[i] = charAccuracy(agg) * 100
			}
			total.LatencySumMs += agg.LatencySumMs
			total.LatencyCount += agg.LatencyCount
		}
		title := "Char " + ch
		if total.LatencyCount > 0 {
			title = fmt.Sprintf("Char %s (avg latency %.0f ms)", ch, charLatency(total))
		}
		series := []Series{{Name: "Accuracy", Values: MovingAverage(accs, window)}}
		if err := PlotSeriesWithColor(w, title, series, plotWidth(totalWidth), height, useColor); err != nil {
			return err
		}
	}
	return nil
}
