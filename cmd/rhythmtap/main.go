// Package main provides the CLI entrypoint for rhythmtap.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/rhythmtap/internal/audio"
	"github.com/verte-zerg/rhythmtap/internal/catalog"
	"github.com/verte-zerg/rhythmtap/internal/config"
	"github.com/verte-zerg/rhythmtap/internal/debug"
	"github.com/verte-zerg/rhythmtap/internal/generator"
	"github.com/verte-zerg/rhythmtap/internal/model"
	"github.com/verte-zerg/rhythmtap/internal/notation"
	"github.com/verte-zerg/rhythmtap/internal/plain"
	"github.com/verte-zerg/rhythmtap/internal/report"
	"github.com/verte-zerg/rhythmtap/internal/rhythm"
	"github.com/verte-zerg/rhythmtap/internal/scoring"
	"github.com/verte-zerg/rhythmtap/internal/tui"
)

const (
	defaultTolerance = 80.0
	defaultVolume    = 0.8
	defaultOffset    = 0.0
	randomPrefix     = "random-"
)

var defaultTapKeys = []string{"space"}

var (
	practiceScore     string
	practiceTolerance float64
	practiceKeys      []string
	practiceBeaming   bool
	practiceMute      bool
	practiceOffset    float64
	practiceVolume    float64
	practiceRandom    int64

	debugEnabled bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "rhythmtap",
		Short:             "Tap along to rhythms in the terminal",
		SilenceUsage:      true,
		SilenceErrors:     false,
		RunE:              runPracticeCmd,
		PersistentPreRunE: enableDebugLog,
		PersistentPostRun: func(*cobra.Command, []string) { debug.Disable() },
	}

	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "write a debug log to the state directory")
	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newPlainCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceScore, "score", catalog.DefaultID, "score id (see: rhythmtap scores)")
	cmd.Flags().Float64Var(&practiceTolerance, "tolerance", defaultTolerance, "timing tolerance in ms")
	cmd.Flags().StringSliceVar(&practiceKeys, "keys", defaultTapKeys, "tap keys")
	cmd.Flags().BoolVar(&practiceBeaming, "beaming", false, "beam eighths and sixteenths in the notation")
	cmd.Flags().BoolVar(&practiceMute, "mute", false, "disable metronome clicks")
	cmd.Flags().Float64Var(&practiceOffset, "offset", defaultOffset, "latency in ms subtracted from every tap")
	cmd.Flags().Float64Var(&practiceVolume, "volume", defaultVolume, "click volume (0-1)")
	cmd.Flags().Int64Var(&practiceRandom, "random", 0, "practice a generated pattern from this seed")
}

func enableDebugLog(_ *cobra.Command, _ []string) error {
	if !debugEnabled {
		return nil
	}
	path := config.DefaultDebugLogPath()
	if err := debug.Enable(path); err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	logErrf("debug log: %s\n", path)
	return nil
}

func resolvePracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "score", &practiceScore, fileCfg.Practice.Score)
	applyFloatConfig(cmd, "tolerance", &practiceTolerance, fileCfg.Practice.ToleranceMs)
	applyStringSliceConfig(cmd, "keys", &practiceKeys, fileCfg.Practice.TapKeys)
	applyBoolConfig(cmd, "beaming", &practiceBeaming, fileCfg.Practice.Beaming)
	applyBoolConfig(cmd, "mute", &practiceMute, fileCfg.Practice.Mute)
	applyFloatConfig(cmd, "offset", &practiceOffset, fileCfg.Practice.OffsetMs)
	applyFloatConfig(cmd, "volume", &practiceVolume, fileCfg.Practice.Volume)

	cfg := model.Config{
		ScoreID:     practiceScore,
		ToleranceMs: practiceTolerance,
		TapKeys:     practiceKeys,
		Beaming:     practiceBeaming,
		Mute:        practiceMute,
		OffsetMs:    practiceOffset,
		Volume:      practiceVolume,
		RandomSeed:  practiceRandom,
	}
	if cmd.Flags().Changed("random") {
		cfg.ScoreID = randomPrefix + strconv.FormatInt(cfg.RandomSeed, 10)
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolvePracticeConfig(cmd)
	if err != nil {
		return err
	}
	scores := catalog.All()
	if strings.HasPrefix(cfg.ScoreID, randomPrefix) {
		score, err := resolveScore(cfg.ScoreID)
		if err != nil {
			return err
		}
		scores = append([]model.RhythmScore{score}, scores...)
	}

	m, err := tui.NewModel(cfg, scores, newClicker(cfg))
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newPlainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plain",
		Short: "Practice without the full-screen interface",
		Args:  cobra.NoArgs,
		RunE:  runPlainCmd,
	}
	addPracticeFlags(cmd)
	return cmd
}

func runPlainCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolvePracticeConfig(cmd)
	if err != nil {
		return err
	}
	score, err := resolveScore(cfg.ScoreID)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = plain.Run(ctx, cfg, score, newClicker(cfg), cmd.OutOrStdout())
	if errors.Is(err, plain.ErrNotTerminal) {
		return fmt.Errorf("%w; run rhythmtap plain from an interactive terminal", err)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newClicker(cfg model.Config) audio.Clicker {
	if cfg.Mute {
		return audio.Silent{}
	}
	sp, err := audio.NewSpeaker(cfg.Volume)
	if err != nil {
		logErrf("%v; continuing without clicks\n", err)
		return audio.Silent{}
	}
	return sp
}

func newScoresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "List built-in scores",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, s := range catalog.All() {
		line := fmt.Sprintf("%-16s %-16s %4g BPM  %d/%d", s.ID, s.Title, s.TempoBPM, s.TimeSignature.Numerator, s.TimeSignature.Denominator)
		if _, err := fmt.Fprintln(out, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <score-id>",
		Short: "Print a score's notation and expected onsets",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	cmd.Flags().BoolVar(&practiceBeaming, "beaming", false, "beam eighths and sixteenths in the notation")
	return cmd
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	score, err := resolveScore(args[0])
	if err != nil {
		return err
	}
	plan, err := rhythm.Prepare(score)
	if err != nil {
		return err
	}
	lines := []string{
		fmt.Sprintf("%s (%s)", score.Title, score.ID),
		fmt.Sprintf("%g BPM  %d/%d  beat %.1fms  length %.1fms", score.TempoBPM, score.TimeSignature.Numerator, score.TimeSignature.Denominator, plan.BeatMs, plan.TotalMs),
		notation.Render(score, practiceBeaming, nil),
		"",
	}
	lines = append(lines, report.OnsetLines(plan.Onsets)...)
	out := cmd.OutOrStdout()
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <score-id> <tap-ms>...",
		Short: "Score a list of tap times against a score",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runScoreCmd,
	}
	cmd.Flags().Float64Var(&practiceTolerance, "tolerance", defaultTolerance, "timing tolerance in ms")
	cmd.Flags().Float64Var(&practiceOffset, "offset", defaultOffset, "latency in ms subtracted from every tap")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	score, err := resolveScore(args[0])
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "tolerance", &practiceTolerance, fileCfg.Practice.ToleranceMs)
	applyFloatConfig(cmd, "offset", &practiceOffset, fileCfg.Practice.OffsetMs)
	if practiceTolerance < 0 {
		return fmt.Errorf("tolerance must be >= 0")
	}
	taps, err := parseTaps(args[1:])
	if err != nil {
		return err
	}
	plan, err := rhythm.Prepare(score)
	if err != nil {
		return err
	}
	for i := range taps {
		taps[i] -= practiceOffset
	}
	summary := scoring.EvaluateAttempt(plan.Onsets, taps, practiceTolerance)
	return report.Write(cmd.OutOrStdout(), summary, 0)
}

func parseTaps(args []string) ([]float64, error) {
	taps := make([]float64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid tap time %q: %w", part, err)
			}
			taps = append(taps, v)
		}
	}
	return taps, nil
}

// resolveScore looks up a catalog id or builds a generated score from a
// "random-<seed>" id.
func resolveScore(id string) (model.RhythmScore, error) {
	if seedText, ok := strings.CutPrefix(id, randomPrefix); ok {
		seed, err := strconv.ParseInt(seedText, 10, 64)
		if err == nil {
			return generator.NewSeeded(seed).Score()
		}
	}
	return catalog.Lookup(id)
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
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# rhythmtap configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# score = %q   # Score id (see: rhythmtap scores)
# tolerance-ms = %.0f         # Timing tolerance in ms
# tap-keys = ["space"]       # Keys that count as taps
# beaming = false            # Beam eighths and sixteenths
# mute = false               # Disable metronome clicks
# offset-ms = %.0f             # Latency subtracted from every tap
# volume = %.1f              # Click volume (0-1)
`,
		catalog.DefaultID,
		defaultTolerance,
		defaultOffset,
		defaultVolume,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.ToleranceMs < 0 {
		return fmt.Errorf("--tolerance must be >= 0")
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return fmt.Errorf("--volume must be between 0 and 1")
	}
	if len(cfg.TapKeys) == 0 {
		return fmt.Errorf("--keys must not be empty")
	}
	for _, k := range cfg.TapKeys {
		if strings.TrimSpace(k) == "" && k != " " {
			return fmt.Errorf("--keys must not contain empty keys")
		}
	}
	if _, err := resolveScore(cfg.ScoreID); err != nil {
		return err
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
