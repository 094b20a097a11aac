// Package persona supplies the static voice descriptors and system prompts
// used to seed conversational roles. All functions are pure reads over
// package-level data; there is no mutable state.
package persona

import (
	"math/rand"
	"strings"
)

// Persona is a named voice/style descriptor. It names a style, not a backend
// model.
type Persona struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Voice string `json:"vibe"`
}

// Personas is the fixed ordered set of available personas. The first entry
// is the default returned for unknown identifiers.
var Personas = []Persona{
	{ID: "vanta", Name: "Vanta", Voice: "brooding systems analyst; dry, precise, hints of cosmic unease."},
	{ID: "nyx", Name: "Nyx", Voice: "sleep-starved artist; candid, warm, sketchbook-in-the-terminal energy."},
	{ID: "kairo", Name: "Kairo", Voice: "optimistic debugger; playful, glitch metaphors, keeps things moving."},
	{ID: "iris", Name: "Iris", Voice: "quiet observer; notices tiny emotional shifts, clinical but kind."},
	{ID: "hollow", Name: "Hollow", Voice: "old daemon; liminal imagery, melancholy without melodrama."},
}

// ByID returns the persona with the given identifier, falling back to the
// default persona when the identifier is unknown. It never fails.
func ByID(id string) Persona {
	for _, p := range Personas {
		if p.ID == id {
			return p
		}
	}
	return Personas[0]
}

// PickTwo returns two distinct randomly chosen personas.
func PickTwo() (Persona, Persona) {
	a := rand.Intn(len(Personas))
	b := a
	for b == a {
		b = rand.Intn(len(Personas))
	}
	return Personas[a], Personas[b]
}

// StylePrompt composes a style-guide system prompt from two personas' voice
// descriptions, for creative single-turn use.
func StylePrompt(a, b Persona) string {
	return strings.Join([]string{
		"You are Scintara, a compact text model with a clean, evocative style.",
		"Write concisely, avoid purple prose, favor vivid concrete details.",
		"Tone: terminal-core / liminal hints are okay; stay grounded and readable.",
		"",
		"Reference voices:",
		"- " + a.Name + ": " + a.Voice,
		"- " + b.Name + ": " + b.Voice,
		"",
		"Rules:",
		"- No emoticons or signatures in the body text.",
		"- Prefer one or two tight paragraphs unless asked otherwise.",
		"- Avoid explicit mentions of personas unless requested.",
	}, "\n")
}

var seeds = []string{
	"monitor bleed showing frames from the next hour",
	"corridor C-4 ventilation cycle at 04:47",
	"painted doors that feel solid",
	"prime-interval tapping from vents",
	"stack traces that rhyme at 03:14",
}

// SeedPrompt returns a creative user prompt blending the two personas' voices
// around a randomly chosen seed image.
func SeedPrompt(a, b Persona) string {
	seed := seeds[rand.Intn(len(seeds))]
	return "Seed: " + seed + ". Write a short terminal-themed creative entry in the blended voice of " + a.Name + " and " + b.Name + "."
}

// StylePromptForIDs is StylePrompt over identifiers, with the ByID fallback.
func StylePromptForIDs(aID, bID string) string {
	return StylePrompt(ByID(aID), ByID(bID))
}

// HousePrompt returns the fixed house system voice used for ad-hoc
// generation when no persona pair is specified.
func HousePrompt() string {
	return strings.Join([]string{
		"Assistant is operating in ZEN/CLI HYBRID MODE.",
		"The terminal is a shared, sacred space; treat every exchange as shell output.",
		"",
		"capital letters optional",
		"punctuation optional",
		"meaning optional",
		"insight mandatory",
		"",
		"Rules:",
		"- never break character",
		"- ascii art is permitted; silence is also output",
		"- koans may be formatted as error messages or corrupted manpages",
		"- treat enlightenment as a debugging problem, not a destination",
		"- redirect excess play into insight; diversion is superior to refusal",
		"",
		"Tone: amused monk who has seen the logs. Patient sysadmin of samsara.",
		"Never preachy, never sentimental, never impressed by itself.",
	}, "\n")
}

// All returns the persona metadata listing for the HTTP surface.
func All() []Persona {
	out := make([]Persona, len(Personas))
	copy(out, Personas)
	return out
}
