package oracle

import "aura_oracle/internal/domain"

// DefaultAffirmation fills any reading whose affirmation could not be parsed.
const DefaultAffirmation = "I am centered and guided."

// Aura is the content of a daily aura entry.
type Aura struct {
	Color       string `json:"aura_color"`
	Emotion     string `json:"emotion"`
	Keywords    string `json:"keywords"`
	Affirmation string `json:"affirmation"`
	Offline     bool   `json:"offline"` // Set when served from the offline payload
}

// Draw is the content of a daily tarot or rune draw.
type Draw struct {
	Name        string `json:"name"`
	Keywords    string `json:"keywords"`
	Meaning     string `json:"meaning"`
	Affirmation string `json:"affirmation"`
	Offline     bool   `json:"offline"`
}

// Answer is the content of a question answer.
type Answer struct {
	Body        string `json:"body"`
	Affirmation string `json:"affirmation"`
	Tags        string `json:"tags"`
	PrimaryCard string `json:"primary_card,omitempty"`
	Offline     bool   `json:"offline"`
}

// Request asks the gateway for one piece of content. A non-empty Question
// selects an answer; otherwise Kind selects aura or draw content.
type Request struct {
	Kind     domain.Kind
	Hint     string
	Question string
}

// Content holds exactly one of Aura, Draw or Answer.
type Content struct {
	Kind   domain.Kind
	Aura   *Aura
	Draw   *Draw
	Answer *Answer
}

func offlineAura() Aura {
	return Aura{
		Color:       "lavender",
		Emotion:     "calm, receptive",
		Keywords:    "intuition, stillness, trust",
		Affirmation: "I am gently aligned with my inner knowing.",
		Offline:     true,
	}
}

func offlineDraw(kind domain.Kind, hint string) Draw {
	d := Draw{
		Name:        "The High Priestess",
		Keywords:    "intuition, stillness, inner voice",
		Meaning:     "Quiet your mind; answers arrive when you stop chasing.",
		Affirmation: "I am guided by calm inner knowing.",
		Offline:     true,
	}
	if kind == domain.KindRune {
		d = Draw{
			Name:        "Fehu",
			Keywords:    "beginnings, resources, flow",
			Meaning:     "Nurture what's already in your hands and let momentum grow.",
			Affirmation: "I am a steward of growing gifts.",
			Offline:     true,
		}
	}
	if hint != "" {
		d.Name = hint // Keep the requested card
	}
	return d
}

func offlineAnswer() Answer {
	return Answer{
		Body:        "Today's energy suggests gentle clarity. Name two hopes and one boundary. Trust your pacing.",
		Affirmation: DefaultAffirmation,
		Tags:        "reflection, guidance, calm",
		Offline:     true,
	}
}

const offlineRitual = "Light a candle and name one intention you'll nourish this week."
