// Package style derives the target length and tone of a reply from the
// detected emotion, the query wording and the recent conversation.
package style

import (
	"strings"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
)

// LengthBucket is the target reply size.
type LengthBucket string

const (
	Short  LengthBucket = "short"
	Medium LengthBucket = "medium"
	Long   LengthBucket = "long"
)

// Buckets lists every length bucket.
var Buckets = []LengthBucket{Short, Medium, Long}

// Tone is the register the reply should take.
type Tone string

const (
	Gentle     Tone = "gentle"
	Calm       Tone = "calm"
	Reassuring Tone = "reassuring"
	Affirming  Tone = "affirming"
	Supportive Tone = "supportive"
)

// ResponseStyle is derived per request and never persisted.
type ResponseStyle struct {
	Emotion emotion.Label
	Length  LengthBucket
	Tone    Tone
}

// Turn is a prior (query, response) exchange, oldest first.
type Turn struct {
	Query    string
	Response string
}

const (
	// shortQueryChars: queries shorter than this get a short reply.
	shortQueryChars = 25

	// DefaultLongResponseChars: a prior reply longer than this signals the
	// user is engaged with longer answers.
	DefaultLongResponseChars = 300
)

var (
	longCues   = []string{"explain", "tell me about", "describe", "help me understand", "what is"}
	mediumCues = []string{"how do i", "how can i", "what should i", "how to"}
)

// Policy selects styles. The zero value uses the default thresholds.
type Policy struct {
	LongResponseChars int
}

// Select is Policy{}.Select.
func Select(query string, label emotion.Label, history []Turn) ResponseStyle {
	return Policy{}.Select(query, label, history)
}

// Select is a pure function of its inputs.
func (p Policy) Select(query string, label emotion.Label, history []Turn) ResponseStyle {
	length := lengthFor(query)
	if length == Short && p.upgradeShort(label, history) {
		length = Medium
	}
	return ResponseStyle{Emotion: label, Length: length, Tone: ToneFor(label)}
}

func lengthFor(query string) LengthBucket {
	if len(query) < shortQueryChars {
		return Short
	}
	lower := strings.ToLower(query)
	if containsAny(lower, longCues) {
		return Long
	}
	if containsAny(lower, mediumCues) {
		return Medium
	}
	return Medium
}

// upgradeShort applies the history rule: with at least two prior turns,
// a long recent reply or a distressed/anxious user lifts short to medium.
func (p Policy) upgradeShort(label emotion.Label, history []Turn) bool {
	if len(history) < 2 {
		return false
	}
	if label == emotion.Distressed || label == emotion.Anxious {
		return true
	}
	limit := p.LongResponseChars
	if limit <= 0 {
		limit = DefaultLongResponseChars
	}
	for _, t := range history[len(history)-2:] {
		if len(t.Response) > limit {
			return true
		}
	}
	return false
}

// ToneFor maps an emotion to its reply tone.
func ToneFor(label emotion.Label) Tone {
	switch label {
	case emotion.Distressed, emotion.Sad:
		return Gentle
	case emotion.Angry:
		return Calm
	case emotion.Anxious:
		return Reassuring
	case emotion.Content, emotion.Hopeful:
		return Affirming
	default:
		return Supportive
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
