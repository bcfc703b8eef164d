package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/config"
	"github.com/MikeSquared-Agency/oars/internal/llm"
	"github.com/MikeSquared-Agency/oars/internal/rules"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
)

var rootCmd = &cobra.Command{
	Use:   "oars",
	Short: "Score motivational interviewing practice sessions",
	Long: `oars counts open questions, affirmations, reflections and summaries in
counselor/client transcripts, scores the session and writes feedback. It can
run as an HTTP service, analyze transcript files offline or host a practice
session against a simulated client.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads config from the --config file and the environment and
// configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// newService builds the analysis service shared by every command. sinks
// may be nil.
func newService(cfg *config.Config, provider llm.Provider, sinks []analysis.Sink) (*analysis.Service, error) {
	opts := analysis.Options{
		DefaultLanguage: cfg.Language,
		DefaultStrategy: analysis.Strategy(cfg.Strategy),
		MaxExamples:     cfg.MaxExamples,
		LLM:             provider,
		Sinks:           sinks,
	}
	if cfg.RulesFile != "" {
		rs, err := rules.LoadFile(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading rules file: %w", err)
		}
		opts.RuleSets = map[string]*rules.RuleSet{rs.Language(): rs}
		slog.Info("custom rules loaded", "path", cfg.RulesFile, "language", rs.Language())
	}
	return analysis.NewService(opts, slog.Default())
}

// newSimulator reads counselor turns with the service's default rule set.
func newSimulator(cfg *config.Config, svc *analysis.Service, provider llm.Provider) (*simulator.Simulator, error) {
	rs, err := svc.Rules("")
	if err != nil {
		return nil, err
	}
	return simulator.New(provider, rs, slog.Default()).WithFallbackModel(cfg.FallbackModel), nil
}

// newProvider returns nil when no LLM is configured.
func newProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(llm.Config{
		Provider:     cfg.LLMProvider,
		Model:        cfg.Model,
		AnthropicKey: cfg.AnthropicAPIKey,
		OpenAIKey:    cfg.OpenAIAPIKey,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return provider, nil
}

func setupLogging(level string) {
	setupLoggingTo(os.Stdout, level)
}

// setupLoggingTo is used by commands whose stdout carries results.
func setupLoggingTo(w io.Writer, level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
