package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/MikeSquared-Agency/oars/internal/analysis"
	"github.com/MikeSquared-Agency/oars/internal/oars"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

var page = template.Must(template.New("report").Parse(pageTemplate))

type tick struct {
	Pos   int
	Label string
}

type countRow struct {
	ID       string
	Name     string
	Desc     string
	Count    int
	Examples []oars.Example
}

type valueRow struct {
	Name  string
	Value string
	Desc  string
}

type pageData struct {
	Lang        string
	Title       string
	ScoreTitle  string
	Score       int
	Band        string
	Majors      []tick
	Minors      []int
	CountsTitle string
	ExamplesBtn string
	ColType     string
	ColValue    string
	ColExplain  string
	ColComment  string
	Counts      []countRow
	RatiosTitle string
	Ratios      []valueRow
	TopicsTitle string
	Topics      []valueRow
	FbTitle     string
	Feedback    template.HTML
	RawTitle    string
	RawData     template.HTML
	Disclaimer  string
}

var exampleIDs = [6]string{"ex-open", "ex-closed", "ex-rs", "ex-rc", "ex-aff", "ex-sum"}

// HTML renders the report page. Narrative sections are written as Markdown
// and converted with goldmark; user text is escaped by html/template.
func HTML(r *analysis.Result) ([]byte, error) {
	l := labelsFor(r.Language)

	feedback, err := convert(feedbackMarkdown(r, l))
	if err != nil {
		return nil, fmt.Errorf("render feedback: %w", err)
	}
	raw, err := rawData(r)
	if err != nil {
		return nil, fmt.Errorf("render raw data: %w", err)
	}

	data := pageData{
		Lang:        l.htmlLang,
		Title:       l.title,
		ScoreTitle:  l.totalScore,
		Score:       min(100, max(0, r.TotalScore)),
		Band:        r.Band,
		Minors:      []int{10, 30, 50, 70, 90},
		CountsTitle: l.countsTitle,
		ExamplesBtn: l.examples,
		ColType:     l.colType,
		ColValue:    l.colValue,
		ColExplain:  l.colExplain,
		ColComment:  l.colComment,
		RatiosTitle: l.ratiosTitle,
		TopicsTitle: l.topicsTitle,
		FbTitle:     l.feedback,
		Feedback:    feedback,
		RawTitle:    l.rawData,
		RawData:     raw,
		Disclaimer:  l.disclaimer,
	}
	for i, name := range l.scale {
		data.Majors = append(data.Majors, tick{Pos: i * 20, Label: name})
	}
	counts := countValues(r.Counts)
	for i, list := range exampleLists(r.Examples) {
		data.Counts = append(data.Counts, countRow{
			ID:       exampleIDs[i],
			Name:     l.categories[i].name,
			Desc:     l.categories[i].desc,
			Count:    counts[i],
			Examples: list,
		})
	}
	for i, v := range ratioValues(r.Ratios) {
		data.Ratios = append(data.Ratios, valueRow{Name: l.ratios[i].name, Value: v, Desc: l.ratios[i].desc})
	}
	data.Topics = []valueRow{
		{Name: l.topicMain.name, Value: r.Topics.PrimaryTopic, Desc: l.topicMain.desc},
		{Name: l.topicOthers.name, Value: otherTopics(r.Topics.OtherTopics), Desc: l.topicOthers.desc},
		{Name: l.topicShifts.name, Value: fmt.Sprint(r.Topics.TopicShifts), Desc: l.topicShifts.desc},
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func convert(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// rawData renders the scoring inputs as a highlighted JSON block.
func rawData(r *analysis.Result) (template.HTML, error) {
	doc, err := json.MarshalIndent(map[string]any{
		"counts":          r.Counts,
		"ratios":          r.Ratios,
		"score_breakdown": r.ScoreBreakdown,
		"length":          r.Length,
		"strategy_used":   r.StrategyUsed,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return convert("```json\n" + string(doc) + "\n```\n")
}
