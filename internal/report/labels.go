package report

type category struct {
	name string
	desc string
}

type labels struct {
	htmlLang     string
	title        string
	totalScore   string
	countsTitle  string
	examples     string
	colType      string
	colValue     string
	colExplain   string
	colComment   string
	categories   [6]category // open, closed, simple, complex, affirmations, summaries
	ratiosTitle  string
	ratios       [3]category
	topicsTitle  string
	topicMain    category
	topicOthers  category
	topicShifts  category
	feedback     string
	strengths    string
	improvements string
	exercises    string
	noStrengths  string
	noImprove    string
	insufficient string
	disclaimer   string
	rawData      string
	scale        [6]string // 0, 20, 40, 60, 80, 100
}

var labelsNB = labels{
	htmlLang:    "no",
	title:       "Rapport fra MI-øvelse",
	totalScore:  "Totalscore",
	countsTitle: "OARS – telling",
	examples:    "Eksempler",
	colType:     "Type",
	colValue:    "Verdi",
	colExplain:  "Forklaring/eksempler",
	colComment:  "Forklaring/kommentar",
	categories: [6]category{
		{"Åpne spørsmål", "Spørsmål som inviterer til utforsking."},
		{"Lukkede spørsmål", "Ja/nei- eller korte faktaspørsmål."},
		{"Refleksjoner (enkle)", "Gjenspeiler innhold i korte ordelag."},
		{"Refleksjoner (komplekse)", "Utvider/fortolker – går litt dypere."},
		{"Bekreftelser", "Styrke-/innsatsfokuserte utsagn."},
		{"Oppsummeringer", "Bør brukes ved skifte/slutt. Refleksjon helt mot slutten tolkes som oppsummering."},
	},
	ratiosTitle: "Forholdstall",
	ratios: [3]category{
		{"Andel åpne spørsmål", "Hvor stor andel av spørsmålene som er åpne."},
		{"Refleksjoner per spørsmål", "Hvor ofte du reflekterer relativt til hvor ofte du spør. Sikt mot ca. 0,8 eller høyere."},
		{"Andel komplekse refleksjoner", "Hvor stor andel av refleksjonene som er komplekse."},
	},
	topicsTitle:  "Tema",
	topicMain:    category{"Hovedtema", "Basert på valgt tema før samtalen."},
	topicOthers:  category{"Andre tema berørt", "Nært beslektede begreper foldes inn i hovedtema."},
	topicShifts:  category{"Temaskifter (anslått)", "Skifter etter at nærliggende begreper er gruppert inn."},
	feedback:     "Tilbakemelding",
	strengths:    "Dette fungerte godt",
	improvements: "Dette kan forbedres",
	exercises:    "Neste øvelser",
	noStrengths:  "Ingen spesifikke styrker identifisert i denne økten.",
	noImprove:    "Ingen konkrete forbedringspunkter identifisert i denne økten.",
	insufficient: "Datagrunnlaget er for lite til å gi målrettet tilbakemelding. Gjennomfør gjerne en lengre økt eller bruk flere OARS-tilnærminger for å få mer treffsikker rapport.",
	disclaimer:   "Rapporten er veiledende og bør tolkes med faglig skjønn.",
	rawData:      "Rådata",
	scale:        [6]string{"Ingen", "Lite", "Moderat", "God", "Meget god", "Fullkommen"},
}

var labelsEN = labels{
	htmlLang:    "en",
	title:       "MI practice report",
	totalScore:  "Total score",
	countsTitle: "OARS counts",
	examples:    "Examples",
	colType:     "Type",
	colValue:    "Value",
	colExplain:  "Explanation/examples",
	colComment:  "Explanation/comment",
	categories: [6]category{
		{"Open questions", "Questions that invite exploration."},
		{"Closed questions", "Yes/no or short factual questions."},
		{"Reflections (simple)", "Mirror content in few words."},
		{"Reflections (complex)", "Extend or interpret, going a little deeper."},
		{"Affirmations", "Statements focused on strengths or effort."},
		{"Summaries", "Best used at topic shifts and the end. A reflection at the very end counts as a summary."},
	},
	ratiosTitle: "Ratios",
	ratios: [3]category{
		{"Open question share", "Share of questions that are open."},
		{"Reflections per question", "How often you reflect relative to how often you ask. Aim for about 0.8 or higher."},
		{"Complex reflection share", "Share of reflections that are complex."},
	},
	topicsTitle:  "Topics",
	topicMain:    category{"Main topic", "Based on the topic chosen before the conversation."},
	topicOthers:  category{"Other topics touched", "Closely related terms fold into the main topic."},
	topicShifts:  category{"Topic shifts (estimated)", "Shifts after related terms are grouped."},
	feedback:     "Feedback",
	strengths:    "What worked well",
	improvements: "What can improve",
	exercises:    "Next exercises",
	noStrengths:  "No specific strengths identified in this session.",
	noImprove:    "No concrete improvements identified in this session.",
	insufficient: "There is too little data for targeted feedback. Try a longer session or use more OARS skills for a more precise report.",
	disclaimer:   "The report is indicative and should be read with professional judgement.",
	rawData:      "Raw data",
	scale:        [6]string{"None", "Little", "Moderate", "Good", "Very good", "Perfect"},
}

func labelsFor(lang string) *labels {
	if lang == "en" {
		return &labelsEN
	}
	return &labelsNB
}
