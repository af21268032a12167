// Package main provides the CLI entrypoint for keysprint.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/keysprint/internal/config"
	"github.com/verte-zerg/keysprint/internal/engine"
	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/prompt"
	"github.com/verte-zerg/keysprint/internal/resultlog"
	"github.com/verte-zerg/keysprint/internal/stats"
	"github.com/verte-zerg/keysprint/internal/store"
	"github.com/verte-zerg/keysprint/internal/tui"
	"github.com/verte-zerg/keysprint/internal/wordlist"
)

const (
	defaultWords       = 15
	defaultTimeWords   = 100
	defaultCaps        = 0.0
	defaultPunct       = 0.0
	defaultPunctSet    = ".,!?;:"
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultSinkPolicy  = "warn"
)

var (
	practiceWords      int
	practiceSeconds    int
	practiceSentences  int
	practiceDeath      bool
	practicePace       int
	practicePrompt     string
	practiceLang       string
	practicePoolSize   int
	practiceCaps       float64
	practicePunct      float64
	practicePunctSet   string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	resultsCSV        string
	resultsSinkPolicy string
	logLevel          string

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsChars       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keysprint",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&practiceWords, "words", "w", defaultWords, "number of words in the prompt")
	flags.IntVarP(&practiceSeconds, "seconds", "s", 0, "time limit in seconds (enables time mode)")
	flags.IntVar(&practiceSentences, "sentences", 0, "number of sentences in the prompt (enables sentences mode)")
	flags.BoolVar(&practiceDeath, "death", false, "end the test on the first mistake")
	flags.IntVar(&practicePace, "pace", 0, "show a pace caret moving at this WPM")
	flags.StringVarP(&practicePrompt, "prompt", "p", "", "custom prompt text")
	flags.StringVarP(&practiceLang, "lang", "l", wordlist.DefaultLang, "word pool language")
	flags.IntVar(&practicePoolSize, "pool-size", 0, "sample only the first N words of the pool (0 keeps all)")
	flags.Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	flags.Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	flags.StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	flags.BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak characters")
	flags.IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	flags.Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	flags.IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	flags.StringVar(&resultsCSV, "log-csv", "", "append results to this CSV file")
	flags.StringVar(&resultsSinkPolicy, "sink-policy", defaultSinkPolicy, "on result storage failure: warn or fail")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func loadFileConfig() (config.FileConfig, error) {
	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, nil
}

func newLogger(cmd *cobra.Command, fileCfg config.FileConfig) (zerolog.Logger, error) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.LogLevel)
	return logging.New(cmd.ErrOrStderr(), logLevel)
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, fileCfg)
	if err != nil {
		return err
	}
	cfg, err := buildConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	var pool []string
	if cfg.CustomText == "" {
		words, path, err := wordlist.Load(config.DefaultWordListDir(), cfg.Lang)
		if err != nil {
			return wordListLoadError(cfg.Lang, err)
		}
		pool = wordlist.Top(words, cfg.PoolSize)
		log.Debug().Str("lang", cfg.Lang).Str("path", path).Int("words", len(pool)).Msg("loaded word pool")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db")
		}
	}()

	gen := prompt.NewSeeded()
	gen.SetDecoration(prompt.Decoration{
		CapsPct:  cfg.CapsPct,
		PunctPct: cfg.PunctPct,
		PunctSet: []rune(cfg.PunctSet),
	})
	refreshWeak := func() {}
	if cfg.FocusWeak {
		refreshWeak = func() {
			gen.SetWeighting(loadWeighting(context.Background(), st, cfg, log))
		}
		refreshWeak()
	}

	sinks := engine.Sinks{st}
	if resultsCSV != "" {
		sinks = append(sinks, resultlog.New(resultsCSV))
	}
	ctrl, err := engine.New(cfg, pool, gen, engine.WithSink(sinks), engine.WithLogger(log))
	if err != nil {
		return err
	}

	m := tui.NewModel(ctrl, tui.Options{
		Logger:   log,
		History:  st,
		Lang:     cfg.Lang,
		OnFinish: func(model.SessionResult) { refreshWeak() },
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

// buildConfig layers flag defaults, the config file and explicit flags.
func buildConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	p := fileCfg.Practice
	applyStringConfig(cmd, "lang", &practiceLang, p.Lang)
	applyIntConfig(cmd, "words", &practiceWords, p.Words)
	applyIntConfig(cmd, "seconds", &practiceSeconds, p.Seconds)
	applyIntConfig(cmd, "sentences", &practiceSentences, p.Sentences)
	applyBoolConfig(cmd, "death", &practiceDeath, p.Death)
	applyIntConfig(cmd, "pace", &practicePace, p.Pace)
	applyIntConfig(cmd, "pool-size", &practicePoolSize, p.PoolSize)
	applyFloatConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyFloatConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyStringConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	applyStringConfig(cmd, "log-csv", &resultsCSV, fileCfg.Results.CSV)
	applyStringConfig(cmd, "sink-policy", &resultsSinkPolicy, fileCfg.Results.SinkPolicy)

	policy, ok := model.ParseSinkPolicy(resultsSinkPolicy)
	if !ok {
		return model.Config{}, &model.ConfigError{Field: "sink-policy", Reason: "must be warn or fail"}
	}

	cfg := model.Config{
		Mode:       model.ModeWords,
		Words:      practiceWords,
		Seconds:    practiceSeconds,
		Sentences:  practiceSentences,
		DeathMode:  practiceDeath,
		PaceWPM:    practicePace,
		CustomText: practicePrompt,
		Lang:       practiceLang,
		PoolSize:   practicePoolSize,
		CapsPct:    practiceCaps,
		PunctPct:   practicePunct,
		PunctSet:   practicePunctSet,
		FocusWeak:  practiceFocusWeak,
		WeakTop:    practiceWeakTop,
		WeakFactor: practiceWeakFactor,
		WeakWindow: practiceWeakWindow,
		SinkPolicy: policy,
	}
	switch {
	case cfg.Seconds != 0 && cfg.Sentences != 0:
		return model.Config{}, &model.ConfigError{Field: "sentences", Reason: "cannot be combined with seconds"}
	case cfg.Seconds != 0:
		cfg.Mode = model.ModeTime
		if p.Words == nil && !cmd.Flags().Changed("words") {
			cfg.Words = defaultTimeWords
		}
	case cfg.Sentences != 0:
		cfg.Mode = model.ModeSentences
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func loadWeighting(ctx context.Context, st *store.Store, cfg model.Config, log zerolog.Logger) prompt.Weighting {
	aggs, err := st.GetWeakChars(ctx, cfg.WeakWindow, cfg.Lang)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load weak chars")
		return prompt.Weighting{}
	}
	weak := stats.SelectWeakChars(aggs, cfg.WeakTop)
	if len(weak) == 0 {
		log.Info().Msg("no stats available for weak-char focus yet; using normal generator")
		return prompt.Weighting{}
	}
	return prompt.Weighting{Weak: weak, Factor: cfg.WeakFactor}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return err
	}
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates path with a commented template unless it exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	tmpl := defaultTOMLTemplate()
	if config.IsYAML(path) {
		tmpl = defaultYAMLTemplate()
	}
	if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available word pool languages",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return err
	}
	return listLangs(cmd.OutOrStdout(), config.DefaultWordListDir())
}

func listLangs(w io.Writer, dir string) error {
	langs, err := wordlist.Langs(dir)
	if err != nil {
		return err
	}
	for _, lang := range langs {
		if _, err := fmt.Fprintln(w, lang); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsChars, "char", "", "characters for per-char curves")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, fileCfg)
	if err != nil {
		return err
	}
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db")
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	out := cmd.OutOrStdout()
	width, useColor := 0, false
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
		useColor = os.Getenv("NO_COLOR") == ""
	}
	if err := report.Render(out, cfg.CurveWindow, width, useColor); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, &model.ConfigError{Field: "last", Reason: "must be >= 0"}
	}
	if statsCurveWindow <= 0 {
		return model.StatsConfig{}, &model.ConfigError{Field: "curve-window", Reason: "must be > 0"}
	}
	return model.StatsConfig{
		Lang:        statsLang,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Chars:       statsChars,
	}, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultTOMLTemplate() string {
	return fmt.Sprintf(`# keysprint configuration
# Uncomment a value to enable it. CLI flags override config values.

# log-level = %q

[practice]
# lang = %q               # Word pool language
# words = %d              # Words per prompt
# seconds = 30            # Time limit, enables time mode
# sentences = 2           # Sentences per prompt, enables sentences mode
# death = false           # End the test on the first mistake
# pace = 60               # Pace caret speed in WPM
# pool-size = 200         # Sample only the first N words of the pool
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set
# focus-weak = false      # Bias practice toward weak characters
# weak-top = %d           # Number of weak characters to focus on
# weak-factor = %.1f      # Weight factor for weak characters
# weak-window = %d        # Number of recent sessions to compute weak chars

[results]
# log-csv = "%s"
# sink-policy = %q        # warn or fail when a result cannot be stored
`,
		logging.DefaultLevel,
		wordlist.DefaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		config.DefaultCSVPath(),
		defaultSinkPolicy,
	)
}

func defaultYAMLTemplate() string {
	return fmt.Sprintf(`# keysprint configuration
# Uncomment a value to enable it. CLI flags override config values.

# log-level: %s

practice:
  # lang: %s
  # words: %d
  # seconds: 30
  # sentences: 2
  # death: false
  # pace: 60
  # pool-size: 200
  # caps: %.2f
  # punct: %.2f
  # punct-set: %q
  # focus-weak: false
  # weak-top: %d
  # weak-factor: %.1f
  # weak-window: %d

results:
  # log-csv: %s
  # sink-policy: %s
`,
		logging.DefaultLevel,
		wordlist.DefaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		config.DefaultCSVPath(),
		defaultSinkPolicy,
	)
}

func wordListLoadError(lang string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("language %q not found", lang),
		"Run: keysprint langs",
		fmt.Sprintf("Add a word list at: %s", filepath.Join(config.DefaultWordListDir(), lang+".txt")),
	}
	return fmt.Errorf("%s: %w", strings.Join(lines, "\n"), err)
}
