package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/report"
	"github.com/MikeSquared-Agency/oars/internal/simulator"
	"github.com/MikeSquared-Agency/oars/internal/topics"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Practice a conversation with a simulated job seeker",
	Long: `Starts a terminal practice session. Pick a topic and difficulty, then type
your turns as the counselor. Type /slutt (or /end) to finish and print the
report.`,
	Args: cobra.NoArgs,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().String("topic", "", "skip the topic prompt")
	practiceCmd.Flags().String("difficulty", "", "skip the difficulty prompt (lett, moderat, vanskelig)")
	rootCmd.AddCommand(practiceCmd)
}

var difficultyChoices = []string{
	string(transcript.DifficultyEasy),
	string(transcript.DifficultyModerate),
	string(transcript.DifficultyHard),
}

func runPractice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLoggingTo(os.Stderr, "warn")

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("practice needs an LLM provider: set LLM_PROVIDER and its API key")
	}
	svc, err := newService(cfg, nil, nil)
	if err != nil {
		return err
	}
	sim, err := newSimulator(cfg, svc, provider)
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	if topic == "" {
		sel := promptui.Select{Label: "Velg tema", Items: topics.All}
		if _, topic, err = sel.Run(); err != nil {
			return fmt.Errorf("topic selection: %w", err)
		}
	}
	difficulty, _ := cmd.Flags().GetString("difficulty")
	if difficulty == "" {
		sel := promptui.Select{Label: "Velg vanskelighetsgrad", Items: difficultyChoices}
		if _, difficulty, err = sel.Run(); err != nil {
			return fmt.Errorf("difficulty selection: %w", err)
		}
	}

	prompt := promptui.Prompt{Label: "Du"}
	readLine := func() (string, error) {
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrInterrupt) {
			return "", io.EOF
		}
		return line, err
	}

	return practiceLoop(cmd.Context(), sim, svc, practiceSettings{
		Topic:      simulator.NormalizeTopic(topic),
		Difficulty: string(simulator.NormalizeDifficulty(difficulty)),
		Language:   cfg.Language,
	}, readLine, cmd.OutOrStdout())
}

type practiceSettings struct {
	Topic      string
	Difficulty string
	Language   string
}

func isEndCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/slutt", "/end":
		return true
	}
	return false
}

// practiceLoop alternates counselor input and simulated replies until an
// end command or EOF, then prints the Markdown report.
func practiceLoop(ctx context.Context, sim *simulator.Simulator, svc *analysis.Service, s practiceSettings, readLine func() (string, error), out io.Writer) error {
	fmt.Fprintf(out, "Tema: %s · Vanskelighetsgrad: %s\nSkriv /slutt for å avslutte.\n\n", s.Topic, s.Difficulty)

	var turns []transcript.RawTurn
	for {
		line, err := readLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if isEndCommand(line) {
			break
		}
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		turns = append(turns, transcript.RawTurn{Speaker: "counselor", Text: text, TS: time.Now().UnixMilli()})
		reply, err := sim.Reply(ctx, simulator.ReplyRequest{
			Topic:      s.Topic,
			Difficulty: s.Difficulty,
			Transcript: turns,
		})
		if err != nil {
			slog.Error("simulated reply failed", "error", err)
			reply = simulator.FallbackReply
		}
		turns = append(turns, transcript.RawTurn{Speaker: "client", Text: reply, TS: time.Now().UnixMilli()})
		fmt.Fprintf(out, "Jobbsøker: %s\n\n", reply)
	}

	res, err := svc.Analyze(ctx, analysis.Request{
		Turns:      turns,
		Topic:      s.Topic,
		Difficulty: s.Difficulty,
		Language:   s.Language,
	})
	if errors.Is(err, analysis.ErrEmptyTranscript) {
		fmt.Fprintln(out, "Ingen replikker å analysere.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, report.Markdown(res))
	return nil
}
