package score

import "math"

// Targets each ratio sub-score saturates at.
const (
	TargetOpenShare    = 0.70
	TargetReflectionQ  = 0.80
	TargetComplexShare = 0.30

	ClosedThreshold = 6
	MaxPenalty      = 8.0
)

// Inputs are the aggregated counts and ratios plus conversation length
// (counselor turns) and topic-shift count.
type Inputs struct {
	OpenQuestions      int
	ClosedQuestions    int
	ReflectionsComplex int
	Affirmations       int
	Summaries          int

	OpenQuestionShare      float64
	ReflectionToQuestion   float64
	ComplexReflectionShare float64

	Turns  int
	Shifts int
}

// Breakdown exposes every sub-score and expectation behind Total.
type Breakdown struct {
	Open            float64 `json:"open"`
	ReflectionRatio float64 `json:"reflection_ratio"`
	ComplexShare    float64 `json:"complex_share"`
	ComplexAbsolute float64 `json:"complex_absolute"`
	Summaries       float64 `json:"summaries"`
	Affirmations    float64 `json:"affirmations"`
	Focus           float64 `json:"focus"`
	ClosedPenalty   float64 `json:"closed_penalty"`
	ExpectedComplex int     `json:"expected_complex"`
	ExpectedSummary int     `json:"expected_summaries"`
	ExpectedAffirm  int     `json:"expected_affirmations"`
	Total           int     `json:"total"`
}

// ExpectedComplex returns the expected absolute number of complex
// reflections for a conversation of the given length.
func ExpectedComplex(turns int) int {
	return max(1, roundHalfUp(float64(turns)/5))
}

// ExpectedAffirmations returns the expected number of affirmations.
func ExpectedAffirmations(turns int) int {
	return max(1, roundHalfUp(float64(turns)/6))
}

// ExpectedSummaries grows with topic shifts and length, capped at 4.
func ExpectedSummaries(turns, shifts int) int {
	exp := 1
	if shifts >= 1 {
		exp++
	}
	if shifts >= 3 {
		exp++
	}
	if turns >= 22 {
		exp++
	}
	return min(4, exp)
}

// Score maps inputs to a 0-100 total. Sub-scores saturate at their target,
// so volume beyond a target earns nothing.
func Score(in Inputs) Breakdown {
	b := Breakdown{
		ExpectedComplex: ExpectedComplex(in.Turns),
		ExpectedSummary: ExpectedSummaries(in.Turns, in.Shifts),
		ExpectedAffirm:  ExpectedAffirmations(in.Turns),
	}

	b.Open = 25 * clamp01(in.OpenQuestionShare/TargetOpenShare)
	b.ReflectionRatio = 25 * clamp01(in.ReflectionToQuestion/TargetReflectionQ)
	b.ComplexShare = 14 * clamp01(in.ComplexReflectionShare/TargetComplexShare)
	b.ComplexAbsolute = 6 * clamp01(float64(in.ReflectionsComplex)/float64(b.ExpectedComplex))
	b.Summaries = 15 * clamp01(float64(in.Summaries)/float64(b.ExpectedSummary))
	b.Affirmations = 10 * clamp01(float64(in.Affirmations)/float64(b.ExpectedAffirm))
	b.Focus = 5 * clamp01(1-float64(min(max(in.Shifts, 0), 5))/5)

	if in.ClosedQuestions > ClosedThreshold {
		b.ClosedPenalty = math.Min(MaxPenalty, float64(in.ClosedQuestions-ClosedThreshold)*1.2)
	}

	base := b.Open + b.ReflectionRatio + b.ComplexShare + b.ComplexAbsolute +
		b.Summaries + b.Affirmations + b.Focus
	b.Total = clamp100(base - b.ClosedPenalty)
	return b
}

// Band returns the report verdict for a total score.
func Band(total int, lang string) string {
	bands := bandsNB
	if lang == "en" {
		bands = bandsEN
	}
	switch {
	case total >= 80:
		return bands[0]
	case total >= 60:
		return bands[1]
	case total >= 40:
		return bands[2]
	default:
		return bands[3]
	}
}

var bandsNB = [4]string{
	"Meget god OARS-bruk.",
	"God OARS-bruk – noen forbedringspunkter.",
	"På vei – styrk refleksjoner/bekreftelser/korte oppsummeringer.",
	"Trenger mer systematikk i OARS.",
}

var bandsEN = [4]string{
	"Very good use of OARS.",
	"Good use of OARS, a few points to improve.",
	"On the way: strengthen reflections, affirmations and short summaries.",
	"OARS needs more structure.",
}

// roundHalfUp matches the rounding used for expectations: halves round up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clamp100(x float64) int {
	n := roundHalfUp(x)
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
