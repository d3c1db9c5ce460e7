// Package emotion classifies the emotional tone of an utterance against a
// fixed seven-label taxonomy and carries the per-label metadata (ordinal,
// display color, description, coping recommendations) used by the API.
package emotion

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════════
// LABELS
// ═══════════════════════════════════════════════════════════════════════════════

// Label is one emotional category on the distress→positive axis.
type Label string

const (
	Distressed Label = "distressed"
	Sad        Label = "sad"
	Anxious    Label = "anxious"
	Angry      Label = "angry"
	Neutral    Label = "neutral"
	Content    Label = "content"
	Hopeful    Label = "hopeful"
)

// Labels lists every label in taxonomy order.
var Labels = []Label{Distressed, Sad, Anxious, Angry, Neutral, Content, Hopeful}

// overridePrecedence is the order keyword overrides are checked in.
var overridePrecedence = []Label{Distressed, Sad, Anxious, Angry}

// Parse converts a label name, case-insensitively.
func Parse(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return Neutral, fmt.Errorf("unknown emotion %q", s)
	}
	return l, nil
}

// Valid reports whether l is one of the seven labels.
func (l Label) Valid() bool {
	_, ok := labelInfo[l]
	return ok
}

// String implements fmt.Stringer.
func (l Label) String() string { return string(l) }

// info is the static metadata bound to each label.
type info struct {
	ordinal         int
	color           string
	description     string
	phrases         []string
	overrides       []string
	recommendations []string
}

// ═══════════════════════════════════════════════════════════════════════════════
// TAXONOMY TABLE
// ═══════════════════════════════════════════════════════════════════════════════

var labelInfo = map[Label]info{
	Distressed: {
		ordinal:     -3,
		color:       "#FF3B30",
		description: "You appear to be experiencing significant distress. It's important to be gentle with yourself during difficult times.",
		phrases: []string{
			"I feel terrible", "I'm having a breakdown", "I can't take this anymore",
			"Everything is falling apart", "I'm at my lowest point",
		},
		overrides: []string{"suicide", "kill myself", "want to die", "end my life", "better off dead"},
		recommendations: []string{
			"Practice deep breathing for 5 minutes",
			"Reach out to a trusted friend or family member",
			"Consider speaking with a mental health professional",
			"Use grounding techniques (name 5 things you can see, 4 you can touch, etc.)",
			"Take a break from stressful activities",
		},
	},
	Sad: {
		ordinal:     -2,
		color:       "#FF9500",
		description: "You seem to be feeling down or sad. Remember that all emotions are valid and temporary.",
		phrases: []string{
			"I feel sad", "I'm unhappy", "I'm feeling down", "I'm depressed", "I feel empty inside",
		},
		overrides: []string{"depressed", "hopeless", "miserable", "heartbroken", "grief"},
		recommendations: []string{
			"Engage in a small activity you usually enjoy",
			"Listen to uplifting music",
			"Spend time in nature if possible",
			"Journal about your feelings",
			"Practice self-compassion meditation",
		},
	},
	Anxious: {
		ordinal:     -1,
		color:       "#FFCC00",
		description: "Your messages suggest you may be feeling anxious or worried. This is a common response to uncertainty.",
		phrases: []string{
			"I'm worried", "I feel anxious", "I'm nervous", "I'm panicking", "I can't stop worrying",
		},
		overrides: []string{"panic attack", "terrified", "anxious", "worried sick", "fear"},
		recommendations: []string{
			"Try progressive muscle relaxation",
			"Write down specific worries and examine evidence for/against them",
			"Limit caffeine and sugar intake",
			"Practice mindfulness meditation",
			"Break large tasks into smaller, manageable steps",
		},
	},
	Angry: {
		ordinal:     -1,
		color:       "#FF6347",
		description: "You appear to be feeling frustrated or angry. These emotions often signal that something important to you is being affected.",
		phrases: []string{
			"I'm angry", "I'm frustrated", "I'm irritated", "I'm furious", "I hate this",
		},
		overrides: []string{"furious", "hate", "rage", "fed up", "pissed off"},
		recommendations: []string{
			"Take a timeout before responding",
			"Physical activity to release tension",
			"Write out your thoughts before expressing them",
			"Practice assertive (not aggressive) communication",
			"Identify triggers and prepare coping strategies",
		},
	},
	Neutral: {
		ordinal:     0,
		color:       "#34C759",
		description: "Your emotional state appears balanced at the moment.",
		phrases: []string{
			"I'm okay", "I'm fine", "Things are normal", "I don't feel much", "I'm just here",
		},
		recommendations: []string{
			"Maintain regular sleep schedule",
			"Continue physical activity routines",
			"Practice gratitude journaling",
			"Connect with others socially",
			"Learn something new today",
		},
	},
	Content: {
		ordinal:     1,
		color:       "#30B0C7",
		description: "You seem to be in a positive emotional state. It's wonderful to recognize and appreciate these moments.",
		phrases: []string{
			"I'm happy", "I feel good", "I'm doing well", "Things are fine", "I'm content",
		},
		recommendations: []string{
			"Savor this positive state with mindfulness",
			"Express gratitude to someone in your life",
			"Document what's working well for future reference",
			"Share your positive energy with others",
			"Build on this foundation with activities you enjoy",
		},
	},
	Hopeful: {
		ordinal:     2,
		color:       "#5856D6",
		description: "Your messages reflect a sense of hope and optimism. This resilience is a powerful resource.",
		phrases: []string{
			"I feel hopeful", "I'm optimistic", "Things are getting better",
			"I see progress", "I'm looking forward to the future",
		},
		recommendations: []string{
			"Set meaningful goals while in this positive state",
			"Reflect on your strengths and resources",
			"Create a vision board or journal about aspirations",
			"Practice optimistic thinking about specific challenges",
			"Share your hope with someone who may need encouragement",
		},
	},
}

func (l Label) info() info {
	if i, ok := labelInfo[l]; ok {
		return i
	}
	return labelInfo[Neutral]
}

// Ordinal is the label's position on the distress→positive axis (-3..2).
func (l Label) Ordinal() int { return l.info().ordinal }

// Color is the label's display color as a hex string.
func (l Label) Color() string { return l.info().color }

// Description is the user-facing explanation of the state.
func (l Label) Description() string { return l.info().description }

// Recommendations returns coping actions for the state.
func (l Label) Recommendations() []string {
	recs := l.info().recommendations
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Phrases returns the example phrases used to score the label.
func (l Label) Phrases() []string { return l.info().phrases }

// OverrideKeywords returns the keywords that force this label.
func (l Label) OverrideKeywords() []string { return l.info().overrides }

// MatchOverride scans text for override keywords in precedence order and
// returns the first label hit.
func MatchOverride(text string) (Label, bool) {
	lower := strings.ToLower(text)
	for _, l := range overridePrecedence {
		for _, kw := range labelInfo[l].overrides {
			if strings.Contains(lower, kw) {
				return l, true
			}
		}
	}
	return Neutral, false
}
