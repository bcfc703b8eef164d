package feedback

import "github.com/MikeSquared-Agency/oars/internal/transcript"

type tone struct {
	ask     string
	stretch string
}

type catalog struct {
	strengths           map[string]string
	improvements        map[string]string // "complex" takes tone.ask, "closed" takes tone.stretch
	strengthFallback    string            // takes tone.ask
	improvementFallback string
	genericStrength     string
	genericImprove      string
	nextExercises       []string
	tones               map[transcript.Difficulty]tone
}

func catalogFor(lang string) *catalog {
	if lang == "en" {
		return &catalogEN
	}
	return &catalogNB
}

var catalogNB = catalog{
	strengths: map[string]string{
		"open":             "Høy andel åpne spørsmål skaper rom for utforsking og jobbsøkerens eget språk. Det gjør det enklere å hente frem endringssnakk og holder fokus på det som er viktig for jobbsøkeren. Fortsett å bruke «hva» og «hvordan» i starten av spørsmålene, og behold den rolige rytmen mellom spørsmål og korte speilinger.",
		"reflection_ratio": "God balanse mellom refleksjoner og spørsmål. Jobbsøkeren får tid til å høre egne ord og bygge videre. Behold denne rytmen ved å legge inn en kort speiling før nye spørsmål, det gir flyt og fordyper samtalen.",
		"affirmations":     "Bekreftelser brukes på en måte som fremmer samarbeid og mestringstro. Når du anerkjenner innsats eller verdier konkret, blir det lettere for jobbsøkeren å se egne ressurser. Fortsett med korte, presise bekreftelser knyttet til observerbar atferd.",
		"summaries":        "Oppsummeringene dine binder sammen nøkkelpunkter og justerer fokus uten å ta over. Når du løfter frem endringssnakk i oppsummeringen, forsterker du motivasjon og retning. Fortsett å bruke oppsummeringer på 1–2 setninger ved skifter og mot slutten av tema.",
		"complex":          "Komplekse refleksjoner brukes i passende mengde og gir dybde. Jobbsøkeren blir møtt på mening og følelse, ikke bare innhold. Veksle gjerne mellom enkel speiling og dobbelsidig refleksjon når jobbsøkeren står i et «både–og».",
	},
	improvements: map[string]string{
		"complex":          "Øk andelen komplekse refleksjoner for å løfte mening og følelse. Utvid en enkel speiling til en tolkning eller lag en dobbelsidig refleksjon («på den ene siden … og samtidig …») når ambivalens dukker opp. Start med å gjøre om én av tre enkle speilinger; %s",
		"summaries":        "Legg inn flere korte oppsummeringer for å binde sammen nøkkelpunkter og styre fokus når du bytter tema, og mot slutten av økten. Avslutt gjerne oppsummeringen med et åpent kontrollspørsmål som inviterer til korreksjon.",
		"open":             "Øk andelen åpne spørsmål ved å omformulere noen ja/nei-spørsmål til «hva» og «hvordan». Still deg selv kontrollspørsmålet «kan dette besvares med mer enn ett ord?» før du spør.",
		"reflection_ratio": "Øk antallet refleksjoner per spørsmål for å gi mer rom for fordypning. Prøv en rytme der du speiler kort etter hvert 1.–2. spørsmål før du går videre, det gir bedre flyt og opplevelse av å bli forstått.",
		"affirmations":     "Gi flere konkrete bekreftelser for å styrke mestringstro og samarbeid. Knytt anerkjennelsen til observerbare handlinger.",
		"closed":           "Antallet lukkede spørsmål er høyt og kan gi forhørspreg. Test regelen «ett åpent spørsmål → én speiling», og bruk lukkede spørsmål mest til raske avklaringer. %s",
	},
	strengthFallback:    "Du holder stø kurs i samtalen og gir jobbsøkeren godt med taletid. %s Bruk gjerne en kort speiling etter åpne spørsmål for å vise at du har fanget essensen før du går videre.",
	improvementFallback: "Fortsett å variere mellom åpne spørsmål og speilinger, og legg inn korte oppsummeringer ved skifte. Velg ett mikro-grep som du øver bevisst i neste økt.",
	genericStrength:     "Rytmen mellom åpne spørsmål, refleksjon og korte oppsummeringer oppleves støttende. Hold på dette mønsteret gjennom hele økten.",
	genericImprove:      "Vær bevisst på rekkefølgen: speil kort → still målrettet, åpent spørsmål → speil igjen. Dette gir driv og struktur.",
	nextExercises: []string{
		"Øv på dobbelsidig refleksjon: skriv om én enkel speiling til en «på den ene siden … og samtidig …»-setning.",
		"Avslutt et tema med en oppsummering på 1–2 setninger som fremhever endringssnakk og konkret neste steg.",
	},
	tones: map[transcript.Difficulty]tone{
		transcript.DifficultyEasy: {
			ask:     "Prøv små, tydelige grep som er lette å gjennomføre allerede i neste økt.",
			stretch: "Når dette sitter, kan du gradvis øke ambisjonsnivået.",
		},
		transcript.DifficultyModerate: {
			ask:     "Bruk korte, målrettede grep som bygger flyt i samtalen.",
			stretch: "Når dette sitter, kan du variere mer mellom refleksjoner og oppsummeringer.",
		},
		transcript.DifficultyHard: {
			ask:     "Hold intervensjonene korte og presise, og prioriter å sikre kontakt før du øker kompleksiteten.",
			stretch: "Når alliansen kjennes stabil, inviter til litt mer utforsking, ett skritt om gangen.",
		},
	},
}

var catalogEN = catalog{
	strengths: map[string]string{
		"open":             "A high share of open questions makes room for exploration and the client's own words. It makes change talk easier to draw out and keeps the focus on what matters to the client. Keep starting questions with \"what\" and \"how\", and keep the calm rhythm between questions and short reflections.",
		"reflection_ratio": "Good balance between reflections and questions. The client gets time to hear their own words and build on them. Keep this rhythm by placing a short reflection before each new question.",
		"affirmations":     "Affirmations are used in a way that supports collaboration and self-efficacy. Concrete recognition of effort or values helps the client see their own resources. Keep affirmations short and tied to observable behaviour.",
		"summaries":        "Your summaries tie key points together and steer focus without taking over. Highlighting change talk in a summary strengthens motivation and direction. Keep using 1–2 sentence summaries at topic shifts and towards the end.",
		"complex":          "Complex reflections are used in a suitable amount and add depth. The client is met on meaning and feeling, not only content. Alternate between simple reflections and double-sided reflections when the client is ambivalent.",
	},
	improvements: map[string]string{
		"complex":          "Increase the share of complex reflections to bring out meaning and feeling. Extend a simple reflection into an interpretation, or use a double-sided reflection (\"on one hand … and at the same time …\") when ambivalence shows up. Start by upgrading one in three simple reflections; %s",
		"summaries":        "Add more short summaries to tie key points together and steer focus when you change topic and towards the end of the session. End a summary with an open check-in question that invites correction.",
		"open":             "Increase the share of open questions by rephrasing some yes/no questions to start with \"what\" or \"how\". Ask yourself \"can this be answered with more than one word?\" before you ask.",
		"reflection_ratio": "Offer more reflections per question to leave room for depth. Try reflecting briefly after every one or two questions before moving on.",
		"affirmations":     "Give more concrete affirmations to strengthen self-efficacy and collaboration. Tie the recognition to observable actions.",
		"closed":           "The number of closed questions is high and can feel like an interrogation. Try the rule \"one open question → one reflection\", and keep closed questions for quick clarifications. %s",
	},
	strengthFallback:    "You keep the conversation steady and give the client plenty of room to talk. %s A short reflection after open questions shows you caught the essence before moving on.",
	improvementFallback: "Keep alternating between open questions and reflections, and add short summaries at topic shifts. Pick one micro-skill to practise deliberately next session.",
	genericStrength:     "The rhythm between open questions, reflection and short summaries feels supportive. Keep this pattern throughout the session.",
	genericImprove:      "Mind the sequence: reflect briefly → ask a focused open question → reflect again. It gives drive and structure.",
	nextExercises: []string{
		"Practise double-sided reflections: rewrite one simple reflection as an \"on one hand … and at the same time …\" sentence.",
		"Close a topic with a 1–2 sentence summary that highlights change talk and a concrete next step.",
	},
	tones: map[transcript.Difficulty]tone{
		transcript.DifficultyEasy: {
			ask:     "Try small, clear moves that are easy to carry out in the next session.",
			stretch: "Once this sticks, raise the ambition step by step.",
		},
		transcript.DifficultyModerate: {
			ask:     "Use short, targeted moves that build flow in the conversation.",
			stretch: "Once this sticks, vary more between reflections and summaries.",
		},
		transcript.DifficultyHard: {
			ask:     "Keep interventions short and precise, and secure contact before adding complexity.",
			stretch: "When the alliance feels stable, invite a little more exploration, one step at a time.",
		},
	},
}
