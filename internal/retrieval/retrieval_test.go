package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/corpus"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding/embeddingtest"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/guidance"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

const (
	passageA = "one two three four five six seven eight nine ten eleven"
	passageB = "one two three four five six seven eight nine ten twelve"
	passageC = "breathing slowly can calm the body during a panic attack"
	passageD = "the stock market closed higher today"
)

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.New(
		[]string{passageA, passageB, passageC, passageD},
		[]embedding.Vector{{1, 0}, {1, 0}, {0.9, 0.1}, {0, 1}},
	)
	require.NoError(t, err)
	return c
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOP-K
// ═══════════════════════════════════════════════════════════════════════════════

func TestTopK(t *testing.T) {
	r := New(nil, nil, nil, Config{})
	q100 := strings.Repeat("a", 100)

	tests := []struct {
		name  string
		query string
		style style.ResponseStyle
		want  int
	}{
		{"empty query hits the floor", "", style.ResponseStyle{Emotion: emotion.Distressed, Length: style.Long}, 3},
		{"neutral medium saturated", q100, style.ResponseStyle{Emotion: emotion.Neutral, Length: style.Medium}, 5},
		{"distressed long saturated", q100 + "extra", style.ResponseStyle{Emotion: emotion.Distressed, Length: style.Long}, 11},
		{"angry short saturated", q100, style.ResponseStyle{Emotion: emotion.Angry, Length: style.Short}, 5},
		{"content short saturated", q100, style.ResponseStyle{Emotion: emotion.Content, Length: style.Short}, 3},
		{"half complexity sad long", strings.Repeat("a", 50), style.ResponseStyle{Emotion: emotion.Sad, Length: style.Long}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.TopK(tt.query, tt.style))
		})
	}
}

func TestTopK_MonotonicInQueryLength(t *testing.T) {
	r := New(nil, nil, nil, Config{})
	for _, l := range emotion.Labels {
		for _, b := range style.Buckets {
			s := style.ResponseStyle{Emotion: l, Length: b}
			prev := 0
			for n := 0; n <= 150; n++ {
				k := r.TopK(strings.Repeat("x", n), s)
				assert.GreaterOrEqual(t, k, prev, "%s/%s at %d", l, b, n)
				assert.GreaterOrEqual(t, k, 3)
				prev = k
			}
		}
	}
}

func TestTopK_BaseResults(t *testing.T) {
	r := New(nil, nil, nil, Config{BaseResults: 10})
	assert.Equal(t, 10, r.TopK(strings.Repeat("a", 100), style.ResponseStyle{Emotion: emotion.Neutral, Length: style.Medium}))
}

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH
// ═══════════════════════════════════════════════════════════════════════════════

func TestSearch_DedupAndThreshold(t *testing.T) {
	f := embeddingtest.New()
	f.Set("query", embedding.Vector{1, 0})
	r := New(f, testCorpus(t), nil, Config{})

	got, err := r.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, passageA, got[0].Text)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-6)
	assert.Equal(t, passageC, got[1].Text)

	// No two results share a fingerprint.
	seen := map[string]bool{}
	for _, p := range got {
		fp := fingerprint(p.Text)
		assert.False(t, seen[fp])
		seen[fp] = true
	}
}

func TestSearch_TruncatesToK(t *testing.T) {
	f := embeddingtest.New()
	f.Set("query", embedding.Vector{1, 0})
	r := New(f, testCorpus(t), nil, Config{})

	got, err := r.Search(context.Background(), "query", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, passageA, got[0].Text)
}

func TestSearch_Unavailable(t *testing.T) {
	_, err := New(nil, testCorpus(t), nil, Config{}).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, embedding.ErrUnavailable)

	_, err = New(embeddingtest.New(), nil, nil, Config{}).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, embedding.ErrUnavailable)

	f := embeddingtest.New()
	f.Fail = true
	_, err = New(f, testCorpus(t), nil, Config{}).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, embeddingtest.ErrFake)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "a b c", fingerprint("  a\tb\n c "))
	assert.Equal(t, fingerprint(passageA), fingerprint(passageB))
	assert.NotEqual(t, fingerprint("Hello world"), fingerprint("hello world"))
}

// ═══════════════════════════════════════════════════════════════════════════════
// RETRIEVE
// ═══════════════════════════════════════════════════════════════════════════════

func TestRetrieve_Sections(t *testing.T) {
	f := embeddingtest.New()
	f.Set("query", embedding.Vector{1, 0})
	r := New(f, testCorpus(t), nil, Config{})
	s := style.ResponseStyle{Emotion: emotion.Anxious, Length: style.Short, Tone: style.Reassuring}

	got := r.Retrieve(context.Background(), "query", s)

	want := "## Relevant Information\n" + passageA + "\n\n" + passageC +
		"\n\n## Response Tone\n" + guidance.Tone(emotion.Anxious) +
		"\n\n## Response Length\n" + guidance.Length(style.Short)
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "## Example Conversations")
}

func TestRetrieve_WithExamples(t *testing.T) {
	f := embeddingtest.New()
	f.Set("query", embedding.Vector{1, 0})
	tr := corpus.NewTranscript([]corpus.Turn{
		{SessionID: "1", Speaker: "client", Value: "I keep worrying about work"},
		{SessionID: "1", Speaker: "therapist", Value: "It sounds like the stress is really weighing on you."},
	})
	r := New(f, testCorpus(t), NewMiner(f, tr, 3), Config{})
	s := style.ResponseStyle{Emotion: emotion.Anxious, Length: style.Short}

	got := r.Retrieve(context.Background(), "query", s)
	assert.Contains(t, got, "\n\n## Example Conversations\n\n### Example 1\nUser: I keep worrying about work\n"+
		"Therapist: It sounds like the stress is really weighing on you.\n\n\n\n## Response Tone\n")
}

func TestRetrieve_EmptyWhenUnavailable(t *testing.T) {
	s := style.ResponseStyle{Emotion: emotion.Neutral, Length: style.Medium}

	assert.Empty(t, New(nil, testCorpus(t), nil, Config{}).Retrieve(context.Background(), "query", s))
	assert.Empty(t, New(embeddingtest.New(), nil, nil, Config{}).Retrieve(context.Background(), "query", s))

	f := embeddingtest.New()
	f.Fail = true
	assert.Empty(t, New(f, testCorpus(t), nil, Config{}).Retrieve(context.Background(), "query", s))
}

func TestFormat_GuidanceOnly(t *testing.T) {
	got := Format(nil, nil, style.ResponseStyle{Emotion: emotion.Hopeful, Length: style.Long})
	assert.True(t, strings.HasPrefix(got, "## Response Tone\n"))
	assert.True(t, strings.HasSuffix(got, guidance.Length(style.Long)))
}
