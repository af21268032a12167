// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"io"
	"strings"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

const (
	defaultCurveChars = 5
	plotHeight        = 8
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []string
	CharAggsAll      []model.CharAggregate
	CharAggsWindow   []model.CharAggregate
	CharPerSession   map[string]map[string]model.CharAggregate
	Chars            []string
	LastSamples      []model.Sample
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	charAggsAll, err := st.ListCharAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := st.ListCharAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	chars := ParseChars(cfg.Chars)
	if len(chars) == 0 {
		chars = TopCharsByFrequency(charAggsAll, defaultCurveChars)
	}
	perSession, err := st.ListCharStatsForSessions(ctx, allIDs, chars)
	if err != nil {
		return Report{}, err
	}

	var lastSamples []model.Sample
	if len(sessions) > 0 {
		lastSamples, err = st.ListSamples(ctx, sessions[len(sessions)-1].SessionID)
		if err != nil {
			return Report{}, err
		}
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		CharAggsAll:      charAggsAll,
		CharAggsWindow:   charAggsWindow,
		CharPerSession:   perSession,
		Chars:            chars,
		LastSamples:      lastSamples,
	}, nil
}

// Render writes the full text report: summary, learning curves, the last
// session's speed curve, per-character table and per-character curves.
func (r Report) Render(w io.Writer, window, width int, useColor bool) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurvesWithSize(w, r.Sessions, window, width, plotHeight, useColor); err != nil {
		return err
	}
	if err := RenderSpeedCurve(w, r.LastSamples, width, plotHeight, useColor); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggsWindow); err != nil {
		return err
	}
	return RenderCharCurvesWithSize(w, r.Sessions, r.CharPerSession, r.Chars, window, width, plotHeight, useColor)
}

// ParseChars splits a character selection such as "a,b" or "asdf".
func ParseChars(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, part := range strings.Split(value, ",") {
		for _, r := range part {
			if r == ' ' && strings.TrimSpace(part) != "" {
				continue
			}
			ch := string(r)
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			out = append(out, ch)
		}
	}
	return out
}

func sessionIDs(sessions []model.SessionAggregate) []string {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []string {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
