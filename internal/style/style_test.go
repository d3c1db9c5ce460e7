package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
)

func TestSelect_Length(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  LengthBucket
	}{
		{"very short", "I feel sad", Short},
		{"24 chars", strings.Repeat("a", 24), Short},
		{"25 chars plain", strings.Repeat("a", 25), Medium},
		{"short even with cue", "explain anxiety", Short},
		{"explain", "Can you explain why I panic at night?", Long},
		{"what is", "What is cognitive behavioural therapy exactly?", Long},
		{"help me understand", "Help me understand my mood swings please", Long},
		{"long cue wins over medium cue", "How do I explain my depression to my family?", Long},
		{"how do i", "How do I stop overthinking everything?", Medium},
		{"how to", "how to be kinder to myself when I fail", Medium},
		{"default", "My week has been really rough at work lately", Medium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.query, emotion.Neutral, nil)
			assert.Equal(t, tt.want, got.Length)
		})
	}
}

func TestToneFor(t *testing.T) {
	want := map[emotion.Label]Tone{
		emotion.Distressed: Gentle,
		emotion.Sad:        Gentle,
		emotion.Angry:      Calm,
		emotion.Anxious:    Reassuring,
		emotion.Content:    Affirming,
		emotion.Hopeful:    Affirming,
		emotion.Neutral:    Supportive,
	}
	for _, l := range emotion.Labels {
		assert.Equal(t, want[l], ToneFor(l), l)
	}
	assert.Equal(t, Supportive, ToneFor(emotion.Label("bogus")))
}

func TestSelect_HistoryUpgrade(t *testing.T) {
	brief := Turn{Query: "hi", Response: "Hello, how are you feeling?"}
	long := Turn{Query: "tell me", Response: strings.Repeat("x", 301)}
	exactly300 := Turn{Query: "tell me", Response: strings.Repeat("x", 300)}

	tests := []struct {
		name    string
		label   emotion.Label
		history []Turn
		want    LengthBucket
	}{
		{"no history", emotion.Distressed, nil, Short},
		{"one turn is not enough", emotion.Anxious, []Turn{brief}, Short},
		{"distressed with history", emotion.Distressed, []Turn{brief, brief}, Medium},
		{"anxious with history", emotion.Anxious, []Turn{brief, brief}, Medium},
		{"long recent reply", emotion.Neutral, []Turn{brief, long}, Medium},
		{"long second-to-last reply", emotion.Content, []Turn{long, brief}, Medium},
		{"long reply outside window", emotion.Neutral, []Turn{long, brief, brief}, Short},
		{"300 is not over 300", emotion.Neutral, []Turn{brief, exactly300}, Short},
		{"sad, brief replies", emotion.Sad, []Turn{brief, brief}, Short},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select("I'm not okay", tt.label, tt.history)
			assert.Equal(t, tt.want, got.Length)
		})
	}
}

func TestSelect_NeverDowngrades(t *testing.T) {
	long := Turn{Response: strings.Repeat("x", 500)}
	got := Select("Can you explain what burnout feels like?", emotion.Distressed, []Turn{long, long})
	assert.Equal(t, Long, got.Length)
}

func TestSelect_Deterministic(t *testing.T) {
	history := []Turn{{Query: "a", Response: "b"}, {Query: "c", Response: strings.Repeat("d", 400)}}
	first := Select("ok", emotion.Angry, history)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Select("ok", emotion.Angry, history))
	}
	assert.Equal(t, ResponseStyle{Emotion: emotion.Angry, Length: Medium, Tone: Calm}, first)
}

func TestPolicy_CustomLongResponseChars(t *testing.T) {
	brief := Turn{Response: "short"}
	mid := Turn{Response: strings.Repeat("x", 120)}

	assert.Equal(t, Short, Policy{}.Select("ok", emotion.Neutral, []Turn{brief, mid}).Length)
	assert.Equal(t, Medium, Policy{LongResponseChars: 100}.Select("ok", emotion.Neutral, []Turn{brief, mid}).Length)
}
