package simulator

import (
	"fmt"

	"github.com/MikeSquared-Agency/oars/internal/topics"
	"github.com/MikeSquared-Agency/oars/internal/transcript"
)

// QuestionType is a coarse reading of the counselor's last utterance.
type QuestionType string

const (
	QuestionOpen   QuestionType = "open"
	QuestionClosed QuestionType = "closed"
	Statement      QuestionType = "statement"
)

var topicGuidance = map[string]string{
	topics.Jobbambivalens:   "Tema-ramme: Ønske om jobb vs. bekymring (helse/kapasitet/økonomi/rolle). Hold deg til jobbrelevante grunner/valg.",
	topics.ManglendeOppmote: "Tema-ramme: struktur/søvn/transport/angst/skam, vilje til endring. Fokus på avtaler/tiltak/skole/arbeid.",
	topics.RedusereRusbruk:  "Tema-ramme: når/hvor/hvorfor, triggere, kontrollforsøk, funksjon i jobb. Ikke medisinske råd.",
	topics.AggressivAtferd:  "Tema-ramme: utløsere, etterpåklokskap, mestringsønske, konsekvenser. Unngå grafiske detaljer.",
}

var difficultyProfile = map[transcript.Difficulty]string{
	transcript.DifficultyEasy: `Vanskelighetsgrad: lett
- Friksjon: Lav. Samarbeidsvillig og åpen.
- Egen-forslag: Kan nevne korte, konkrete ideer (0–1 per svar), tentativt («kanskje kunne…»).
- Lengde: Åpne → 2–4 setninger. Lukkede → 1–2 setninger.`,
	transcript.DifficultyModerate: `Vanskelighetsgrad: moderat
- Friksjon: Middels. Du svarer, men trenger litt dytt for å utdype.
- Egen-forslag: Av og til, helst når veileder inviterer.
- Lengde: Åpne → 1–3 setninger. Lukkede → 1 kort setning.`,
	transcript.DifficultyHard: `Vanskelighetsgrad: vanskelig
- Friksjon: Høyere. Reservert/knapp; svarer, men holder igjen.
- Egen-forslag: Unngå å foreslå egne tiltak med mindre veileder ber eksplisitt.
- Lukkede spørsmål: svar med ett ord eller én svært kort setning.
- Åpne spørsmål: 1–2 korte setninger.
- Ingen motspørsmål uten klar grunn.`,
}

const (
	earlyTone = "I de første 1–2 svarene: vær litt nølende/utforskende i tonen og hold deg kort–middels. Ikke still spørsmål tilbake, med mindre du må avklare noe helt kort."
	laterTone = "Svar direkte på det jobbkonsulenten nettopp skrev. Ikke ta ledelsen og ikke still spørsmål tilbake unødig."
)

var questionHint = map[QuestionType]string{
	QuestionOpen:   "Siste innspill ligner et ÅPENT spørsmål → svar i tråd med vanskelighetsguiden.",
	QuestionClosed: "Siste innspill ligner et LUKKET spørsmål → hvis vanskelighetsgrad er 'vanskelig', svar med ett ord eller én svært kort setning; ellers kort.",
	Statement:      "Siste innspill er ikke tydelig spørsmål → svar kort–middels og relevant, uten å ta ledelsen.",
}

const promptTemplate = `DU ER JOBBSØKEREN i en norsk MI-øvelse.
Tema: %s.

Rolle og stil:
- Du er jobbsøker (klient), ikke veileder. Svar direkte på siste innspill fra jobbkonsulenten.
- Ikke ta ledelsen i samtalen. Ikke still spørsmål tilbake uten klar grunn.
- Bruk naturlig norsk (bokmål), hverdagslig og respektfullt.
- Unngå metaspråk og punktlister (med mindre du blir bedt om det).

%s

%s

Toning i starten:
- %s

Svarform-hint:
- %s

Faglig:
- Hold deg til temaet. Ikke start nye tema.
- Når veileder bruker OARS, svar relevant og konkret, uten å ta over.
- Egen-forslag følger vanskelighetsprofilen (mest på lett, minst på vanskelig).`

// SystemPrompt builds the client persona for one reply. clientTurns is the
// number of replies the client has already given.
func SystemPrompt(topic string, d transcript.Difficulty, clientTurns int, hint QuestionType) string {
	tone := laterTone
	if clientTurns < 2 {
		tone = earlyTone
	}
	profile, ok := difficultyProfile[d]
	if !ok {
		profile = difficultyProfile[transcript.DifficultyModerate]
	}
	h, ok := questionHint[hint]
	if !ok {
		h = questionHint[Statement]
	}
	return fmt.Sprintf(promptTemplate, topic, topicGuidance[topic], profile, tone, h)
}
