// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/keysprint/internal/engine"
	"github.com/verte-zerg/keysprint/internal/model"
	statsPkg "github.com/verte-zerg/keysprint/internal/stats"
)

// TickInterval is how often the time limit and pace caret are refreshed.
const TickInterval = 100 * time.Millisecond

// History supplies past sessions for the footer.
type History interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
}

// Options configures a Model. Zero values are usable.
type Options struct {
	Logger   zerolog.Logger
	History  History
	Lang     string
	Now      func() time.Time
	OnFinish func(model.SessionResult)
}

type tickMsg time.Time

// Model implements the Bubble Tea typing UI around an engine.Controller.
type Model struct {
	ctrl     *engine.Controller
	log      zerolog.Logger
	now      func() time.Time
	onFinish func(model.SessionResult)
	keys     keyMap
	help     help.Model

	width  int
	height int
	menu   bool

	reported bool
	err      error

	lastWPM float64
	lastAcc float64
	hasLast bool

	allCorrect   int
	allIncorrect int
	allDuration  time.Duration
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	paceStyle        = pendingStyle.Background(lipgloss.Color("#3A3A5A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

// NewModel constructs a typing TUI model.
func NewModel(ctrl *engine.Controller, opts Options) *Model {
	m := &Model{
		ctrl:     ctrl,
		log:      opts.Logger,
		now:      opts.Now,
		onFinish: opts.OnFinish,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.loadFooterStats(opts.History, opts.Lang)
	return m
}

// Err returns the error that stopped the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if err := m.ctrl.Tick(time.Time(msg)); err != nil {
			return m.fail(err)
		}
		m.afterEvent()
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if err := m.ctrl.Abort(m.now()); err != nil {
			return m.fail(err)
		}
		return m, tea.Quit
	}
	_, finished := m.ctrl.State().(engine.Finished)
	if m.menu || finished {
		return m.handleOption(msg)
	}
	if key.Matches(msg, m.keys.Menu) {
		m.menu = true
		return m, nil
	}

	now := m.now()
	var err error
	switch {
	case key.Matches(msg, m.keys.WordBackspace):
		_, err = m.ctrl.Key(model.WordBackspace(now))
	case key.Matches(msg, m.keys.Backspace):
		_, err = m.ctrl.Key(model.Backspace(now))
	case msg.Type == tea.KeySpace:
		_, err = m.ctrl.Key(model.Char(' ', now))
	case msg.Type == tea.KeyRunes && !msg.Alt:
		for _, r := range msg.Runes {
			if _, err = m.ctrl.Key(model.Char(r, now)); err != nil {
				break
			}
		}
	}
	if err != nil {
		return m.fail(err)
	}
	m.afterEvent()
	return m, nil
}

func (m *Model) handleOption(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Retry):
		m.ctrl.Restart()
	case key.Matches(msg, m.keys.New):
		if err := m.ctrl.NewPrompt(); err != nil {
			return m.fail(err)
		}
	case key.Matches(msg, m.keys.Menu):
		m.menu = false
		return m, nil
	default:
		return m, nil
	}
	m.menu = false
	m.reported = false
	return m, nil
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.log.Error().Err(err).Msg("stopping test")
	return m, tea.Quit
}

// afterEvent folds a newly finished result into the footer once.
func (m *Model) afterEvent() {
	if m.reported {
		return
	}
	res, ok := m.ctrl.Result()
	if !ok {
		return
	}
	m.reported = true
	m.lastWPM = res.WPM
	m.lastAcc = res.Accuracy
	m.hasLast = true
	m.allCorrect += res.Correct
	m.allIncorrect += res.Incorrect
	m.allDuration += res.Elapsed
	if m.onFinish != nil {
		m.onFinish(res)
	}
}

func (m *Model) loadFooterStats(history History, lang string) {
	if history == nil {
		return
	}
	sessions, err := history.ListSessions(context.Background(), model.StatsConfig{Lang: lang})
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load session stats")
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true
	for _, s := range sessions {
		m.allCorrect += s.Correct
		m.allIncorrect += s.Incorrect
		m.allDuration += time.Duration(s.DurationMs) * time.Millisecond
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if res, ok := m.ctrl.Result(); ok {
		content = m.renderResult(res)
	} else {
		content = m.renderPrompt()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderPrompt() string {
	now := m.now()
	target := m.ctrl.Prompt().Runes()
	pace, ok := m.ctrl.PacePosition(now)
	if !ok {
		pace = -1
	}
	styled := buildStyledRunes(target, m.ctrl.Cursor(), m.ctrl.Marker, pace)

	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	text := renderStyledRunes(styled)
	if m.width > 0 {
		text = lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styled, contentWidth))
	}

	var lines []string
	if left, ok := m.ctrl.Remaining(now); ok {
		lines = append(lines, titleStyle.Render(formatRemaining(left)), "")
	}
	lines = append(lines, text)
	if m.menu {
		lines = append(lines, "", footerStyle.Render("(r)etry / (n)ew / (esc)ape"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderResult(res model.SessionResult) string {
	heading := "Finished"
	switch res.Termination {
	case model.TerminationDied:
		heading = "Died"
	case model.TerminationTimedOut:
		heading = "Time's up"
	case model.TerminationAborted:
		heading = "Aborted"
	}
	rates := make([]float64, len(res.Samples))
	for i, s := range res.Samples {
		rates[i] = s.WPM
	}
	lines := []string{
		titleStyle.Render(heading),
		"",
		fmt.Sprintf("%.1f WPM  (raw %.1f)", res.WPM, res.RawWPM),
		fmt.Sprintf("%.1f%% accuracy  ·  σ %.2f", res.Accuracy*100, res.StdDev),
		fmt.Sprintf("%.1fs  ·  %d keystrokes", res.Elapsed.Seconds(), res.Keystrokes),
	}
	if spark := statsPkg.Sparkline(rates); spark != "" {
		lines = append(lines, "", spark)
	}
	lines = append(lines, "", footerStyle.Render("(r)etry / (n)ew / (esc)ape"))
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func formatRemaining(left time.Duration) string {
	secs := int((left + time.Second - 1) / time.Second)
	return fmt.Sprintf("%ds", secs)
}

func (m *Model) renderFooter() string {
	n := m.ctrl.Prompt().Len()
	if n == 0 {
		return ""
	}
	progress := int(float64(m.ctrl.Cursor()) / float64(n) * 100)
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc*100))
	}
	allWPM, _, allAcc := statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
	segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", allWPM, allAcc*100))

	var keys help.KeyMap = typingKeys(m.keys)
	if _, finished := m.ctrl.State().(engine.Finished); finished || m.menu {
		keys = optionKeys(m.keys)
	}
	segments = append(segments, m.help.ShortHelpView(keys.ShortHelp()))
	return footerStyle.Render(strings.Join(segments, "  "))
}
