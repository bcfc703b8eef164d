// Package report renders a finished analysis as Markdown or as a
// standalone HTML page.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/oars"
)

// Markdown renders the full report as GitHub-flavoured Markdown.
func Markdown(r *analysis.Result) string {
	l := labelsFor(r.Language)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l.title)
	fmt.Fprintf(&b, "**%s: %d/100**. %s\n\n", l.totalScore, r.TotalScore, r.Band)

	fmt.Fprintf(&b, "## %s\n\n", l.countsTitle)
	fmt.Fprintf(&b, "| %s | %s | %s |\n|---|---:|---|\n", l.colType, l.colValue, l.colComment)
	counts := countValues(r.Counts)
	for i, c := range l.categories {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", c.name, counts[i], c.desc)
	}
	b.WriteString("\n")

	ex := exampleLists(r.Examples)
	if hasExamples(ex) {
		fmt.Fprintf(&b, "### %s\n\n", l.examples)
		for i, list := range ex {
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(&b, "**%s**\n\n", l.categories[i].name)
			for _, e := range list {
				fmt.Fprintf(&b, "- [%d] %s\n", e.TurnIndex, inline(e.Text))
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "## %s\n\n", l.ratiosTitle)
	fmt.Fprintf(&b, "| %s | %s | %s |\n|---|---:|---|\n", l.colType, l.colValue, l.colComment)
	for i, v := range ratioValues(r.Ratios) {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", l.ratios[i].name, v, l.ratios[i].desc)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", l.topicsTitle)
	fmt.Fprintf(&b, "| %s | %s | %s |\n|---|---|---|\n", l.colType, l.colValue, l.colComment)
	fmt.Fprintf(&b, "| %s | %s | %s |\n", l.topicMain.name, r.Topics.PrimaryTopic, l.topicMain.desc)
	fmt.Fprintf(&b, "| %s | %s | %s |\n", l.topicOthers.name, otherTopics(r.Topics.OtherTopics), l.topicOthers.desc)
	fmt.Fprintf(&b, "| %s | %d | %s |\n\n", l.topicShifts.name, r.Topics.TopicShifts, l.topicShifts.desc)

	fmt.Fprintf(&b, "## %s\n\n", l.feedback)
	b.WriteString(feedbackMarkdown(r, l))

	fmt.Fprintf(&b, "\n_%s_\n", l.disclaimer)
	return b.String()
}

// feedbackMarkdown renders the feedback section body. It is shared by the
// Markdown and HTML renderers.
func feedbackMarkdown(r *analysis.Result, l *labels) string {
	var b strings.Builder
	fb := r.Feedback

	if !fb.Sufficient {
		fmt.Fprintf(&b, "_%s_\n\n", l.insufficient)
	} else {
		bulletSection(&b, l.strengths, fb.Strengths, l.noStrengths)
		bulletSection(&b, l.improvements, fb.Improvements, l.noImprove)
	}
	if len(fb.NextExercises) > 0 {
		bulletSection(&b, l.exercises, fb.NextExercises, "")
	}
	return b.String()
}

func bulletSection(b *strings.Builder, heading string, items []string, empty string) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	if len(items) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", empty)
		return
	}
	for _, s := range items {
		fmt.Fprintf(b, "- %s\n", inline(s))
	}
	b.WriteString("\n")
}

func countValues(c oars.Counts) [6]int {
	return [6]int{c.OpenQuestions, c.ClosedQuestions, c.ReflectionsSimple, c.ReflectionsComplex, c.Affirmations, c.Summaries}
}

func exampleLists(e oars.Examples) [6][]oars.Example {
	return [6][]oars.Example{e.OpenQuestions, e.ClosedQuestions, e.ReflectionsSimple, e.ReflectionsComplex, e.Affirmations, e.Summaries}
}

func hasExamples(ex [6][]oars.Example) bool {
	for _, l := range ex {
		if len(l) > 0 {
			return true
		}
	}
	return false
}

func ratioValues(r oars.Ratios) [3]string {
	return [3]string{
		percent(r.OpenQuestionShare),
		fmt.Sprintf("%.2f", r.ReflectionToQuestion),
		percent(r.ComplexReflectionShare),
	}
}

func percent(x float64) string {
	return fmt.Sprintf("%d%%", int(math.Floor(x*100+0.5)))
}

func otherTopics(others []string) string {
	if len(others) == 0 {
		return "—"
	}
	return strings.Join(others, ", ")
}

var inlineEscaper = strings.NewReplacer("\r\n", " ", "\n", " ", "|", `\|`)

// inline keeps free text on one line and out of table syntax.
func inline(s string) string {
	return inlineEscaper.Replace(strings.TrimSpace(s))
}
