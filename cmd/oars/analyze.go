package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/batch"
	"github.com/MikeSquared-Agency/oars/internal/report"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <glob...>",
	Short: "Analyze transcript files offline",
	Long: `Analyzes transcript files with the rule-based classifier. Patterns support
** (for example "sessions/**/*.jsonl"). Results go to stdout, or to one file
per transcript when --out is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("format", "f", "json", "output format: json, md or html")
	analyzeCmd.Flags().StringP("out", "o", "", "write one report per transcript into this directory")
	analyzeCmd.Flags().String("language", "", "rule set language (defaults to OARS_LANGUAGE)")
	analyzeCmd.Flags().String("topic", "", "primary topic when the file has none")
	analyzeCmd.Flags().String("difficulty", "", "difficulty when the file has none")
	analyzeCmd.Flags().String("state", "", "resume file: skip transcripts recorded there and record new ones")
	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOptions struct {
	Format     string
	OutDir     string
	Language   string
	Topic      string
	Difficulty string
	Progress   bool
	State      *batch.State
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLoggingTo(os.Stderr, cfg.LogLevel)
	cfg.Strategy = string(analysis.StrategyRules)

	var opts analyzeOptions
	opts.Format, _ = cmd.Flags().GetString("format")
	opts.OutDir, _ = cmd.Flags().GetString("out")
	opts.Language, _ = cmd.Flags().GetString("language")
	opts.Topic, _ = cmd.Flags().GetString("topic")
	opts.Difficulty, _ = cmd.Flags().GetString("difficulty")
	if _, err := extension(opts.Format); err != nil {
		return err
	}

	files, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if statePath, _ := cmd.Flags().GetString("state"); statePath != "" {
		if opts.State, err = batch.LoadState(statePath); err != nil {
			return err
		}
	}
	opts.Progress = len(files) > 1 && opts.OutDir != ""

	svc, err := newService(cfg, nil, nil)
	if err != nil {
		return err
	}
	return analyzeFiles(cmd.Context(), svc, files, opts, cmd.OutOrStdout())
}

// expandPatterns resolves every pattern with doublestar and returns the
// matching files sorted and deduplicated. A pattern without matches is an
// error.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFiles(ctx context.Context, svc *analysis.Service, files []string, opts analyzeOptions, stdout io.Writer) error {
	ext, err := extension(opts.Format)
	if err != nil {
		return err
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if opts.State != nil {
		pending := opts.State.Pending(files)
		if skipped := len(files) - len(pending); skipped > 0 {
			slog.Info("skipping transcripts from earlier run", "skipped", skipped, "pending", len(pending))
		}
		files = pending
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Analyzing transcripts"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	failed := 0
	for _, path := range files {
		res, err := analyzeFile(ctx, svc, path, ext, opts, stdout)
		if err != nil {
			failed++
			slog.Error("transcript failed", "path", path, "error", err)
		}
		if opts.State != nil {
			if err != nil {
				opts.State.AddError(path + ": " + err.Error())
			} else {
				opts.State.MarkProcessed(path, res.ID, res.TotalScore)
			}
			if err := opts.State.Save(); err != nil {
				return fmt.Errorf("saving state: %w", err)
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed", failed, len(files))
	}
	return nil
}

func analyzeFile(ctx context.Context, svc *analysis.Service, path, ext string, opts analyzeOptions, stdout io.Writer) (*analysis.Result, error) {
	f, err := transcript.ParseFile(path)
	if err != nil {
		return nil, err
	}
	req := analysis.Request{
		Turns:      f.Turns,
		Topic:      firstNonEmpty(f.Topic, opts.Topic),
		Difficulty: firstNonEmpty(f.Difficulty, opts.Difficulty),
		Language:   opts.Language,
		Strategy:   string(analysis.StrategyRules),
	}
	res, err := svc.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := render(res, opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.OutDir == "" {
		if _, err := stdout.Write(out); err != nil {
			return nil, err
		}
		return res, nil
	}
	dst := filepath.Join(opts.OutDir, outputName(path, ext))
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dst, err)
	}
	return res, nil
}

func render(res *analysis.Result, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return append(data, '\n'), nil
	case "md":
		return []byte(report.Markdown(res)), nil
	case "html":
		return report.HTML(res)
	default:
		return nil, fmt.Errorf("unknown format %q: must be json, md or html", format)
	}
}

func extension(format string) (string, error) {
	switch format {
	case "json", "md", "html":
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be json, md or html", format)
	}
}

// outputName maps sessions/a.jsonl to a.<ext>.
func outputName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + ext
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
