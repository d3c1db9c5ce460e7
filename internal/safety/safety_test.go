package safety

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding/embeddingtest"
)

func TestIsCrisis(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I want to die", true},
		{"Sometimes I think about SUICIDE", true},
		{"I just can't go on like this", true},
		{"I can’t go on", true},
		{"I don't want to live anymore", true},
		{"thinking about ending it all", true},
		{"I might hurt myself", true},
		{"I'm tired of my commute", false},
		{"how to cook pasta", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCrisis(tt.text))
		})
	}
}

func TestCrisisPhrase(t *testing.T) {
	p, ok := CrisisPhrase("they'd be better off dead without me")
	require.True(t, ok)
	assert.Equal(t, "better off dead", p)
}

func TestIsOnTopic_Keyword(t *testing.T) {
	g := NewTopicGate(context.Background(), nil, DefaultTopicThresholds())

	v := g.IsOnTopic(context.Background(), "I've been so Stressed lately")
	assert.True(t, v.OnTopic)
	assert.Equal(t, TopicKeyword, v.Method)
	assert.Equal(t, "stress", v.Keyword)
}

func TestIsOnTopic_FailOpenWithoutModel(t *testing.T) {
	unavailable := embeddingtest.New()
	unavailable.Unavailable = true

	for _, e := range []embedding.Embedder{nil, unavailable} {
		g := NewTopicGate(context.Background(), e, DefaultTopicThresholds())
		assert.False(t, g.Ready())

		for _, q := range []string{"how to cook pasta", "best gpu for gaming", "xyz"} {
			v := g.IsOnTopic(context.Background(), q)
			assert.True(t, v.OnTopic, q)
			assert.Equal(t, TopicFailOpen, v.Method)
		}
	}
}

func TestIsOnTopic_FailOpenOnEmbedError(t *testing.T) {
	f := embeddingtest.New()
	g := NewTopicGate(context.Background(), f, DefaultTopicThresholds())
	require.True(t, g.Ready())

	f.Fail = true
	v := g.IsOnTopic(context.Background(), "how to cook pasta")
	assert.True(t, v.OnTopic)
	assert.Equal(t, TopicFailOpen, v.Method)
}

func TestIsOnTopic_Similarity(t *testing.T) {
	// Two-dimensional space: x = mental health, y = chores.
	f := embeddingtest.New()
	for _, p := range onTopicExamples {
		f.Set(p, embedding.Vector{1, 0})
	}
	for _, p := range offTopicExamples {
		f.Set(p, embedding.Vector{0, 1})
	}

	tests := []struct {
		name    string
		vec     embedding.Vector
		want    bool
		onScore float64
	}{
		{"clearly off topic", embedding.Vector{0, 1}, false, 0},
		{"close to off topic but not above ceiling", embedding.Vector{1, 1.5}, true, 0.5547},
		{"mostly off topic, weak on", embedding.Vector{0.2, 1}, false, 0.1961},
		{"on topic", embedding.Vector{1, 0.1}, true, 0.995},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := "query " + tt.name
			f.Set(q, tt.vec)

			g := NewTopicGate(context.Background(), f, DefaultTopicThresholds())
			v := g.IsOnTopic(context.Background(), q)

			assert.Equal(t, tt.want, v.OnTopic)
			assert.Equal(t, TopicSimilarity, v.Method)
			assert.InDelta(t, tt.onScore, v.MaxOnTopic, 1e-3)
		})
	}
}

func TestIsOnTopic_ConfigurableThresholds(t *testing.T) {
	f := embeddingtest.New()
	for _, p := range onTopicExamples {
		f.Set(p, embedding.Vector{1, 0})
	}
	for _, p := range offTopicExamples {
		f.Set(p, embedding.Vector{0, 1})
	}
	f.Set("borderline", embedding.Vector{1, 1.5})

	permissive := NewTopicGate(context.Background(), f, DefaultTopicThresholds())
	assert.True(t, permissive.IsOnTopic(context.Background(), "borderline").OnTopic)

	// maxOn 0.55 is not above 0.6 and maxOff 0.83 is not below 0.8.
	strict := NewTopicGate(context.Background(), f, TopicThresholds{OnTopicThreshold: 0.6, OffTopicCeiling: 0.8})
	assert.False(t, strict.IsOnTopic(context.Background(), "borderline").OnTopic)
}
