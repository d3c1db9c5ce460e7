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
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

// pad extends s with filler to exactly n bytes.
func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(".", n-len(s))
}

func exchange(session, user, assistant string) []corpus.Turn {
	return []corpus.Turn{
		{SessionID: session, Speaker: "client", Value: user},
		{SessionID: session, Speaker: "therapist", Value: assistant},
	}
}

func transcriptOf(exchanges ...[]corpus.Turn) *corpus.Transcript {
	var turns []corpus.Turn
	for _, e := range exchanges {
		turns = append(turns, e...)
	}
	return corpus.NewTranscript(turns)
}

func users(ex []Exemplar) []string {
	out := make([]string, len(ex))
	for i, e := range ex {
		out[i] = e.User
	}
	return out
}

func TestInBucket(t *testing.T) {
	tests := []struct {
		n                   int
		short, medium, long bool
	}{
		{0, true, false, false},
		{149, true, false, false},
		{150, true, true, false},
		{151, false, true, false},
		{299, false, true, false},
		{300, false, true, true},
		{301, false, false, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.short, inBucket(tt.n, style.Short), "short %d", tt.n)
		assert.Equal(t, tt.medium, inBucket(tt.n, style.Medium), "medium %d", tt.n)
		assert.Equal(t, tt.long, inBucket(tt.n, style.Long), "long %d", tt.n)
	}
}

func TestMine_FiltersByBucketAndKeyword(t *testing.T) {
	tr := transcriptOf(
		exchange("1", "u-short-sad", "I can hear how sad you are."),
		exchange("1", "u-medium-sad", pad("Feeling down like this is hard.", 200)),
		exchange("2", "u-short-none", "Tell me more about your week."),
		exchange("2", "u-long-sad", pad("That emptiness sounds heavy.", 400)),
	)
	m := NewMiner(nil, tr, 3)

	assert.Equal(t, []string{"u-short-sad"}, users(m.Mine(context.Background(), emotion.Sad, style.Short, "")))
	assert.Equal(t, []string{"u-medium-sad"}, users(m.Mine(context.Background(), emotion.Sad, style.Medium, "")))
	assert.Equal(t, []string{"u-long-sad"}, users(m.Mine(context.Background(), emotion.Sad, style.Long, "")))
	assert.Empty(t, m.Mine(context.Background(), emotion.Angry, style.Short, ""))
}

func TestMine_NeutralNeedsNoKeyword(t *testing.T) {
	tr := transcriptOf(
		exchange("1", "a", "Tell me more about your week."),
		exchange("1", "b", "What happened next?"),
	)
	got := NewMiner(nil, tr, 3).Mine(context.Background(), emotion.Neutral, style.Short, "")
	assert.Equal(t, []string{"a", "b"}, users(got))
}

func TestMine_KeywordRankingIsStable(t *testing.T) {
	tr := transcriptOf(
		exchange("1", "one-kw-first", "You sound worried."),
		exchange("1", "three-kw", "Worried, nervous, and anxious all at once."),
		exchange("2", "one-kw-second", "That is a lot of stress."),
		exchange("2", "two-kw", "Panic and stress feed each other."),
		exchange("3", "one-kw-third", "Nervous energy is normal."),
	)
	got := NewMiner(nil, tr, 3).Mine(context.Background(), emotion.Anxious, style.Short, "")
	assert.Equal(t, []string{"three-kw", "two-kw", "one-kw-first"}, users(got))
}

func TestMine_SimilarityRanking(t *testing.T) {
	f := embeddingtest.New()
	f.Set("I failed my exam", embedding.Vector{1, 0})
	f.Set("my dog ran away", embedding.Vector{0, 1})
	f.Set("exam stress is crushing me", embedding.Vector{0.8, 0.2})
	f.Set("I bombed the test", embedding.Vector{0.95, 0.05})

	tr := transcriptOf(
		exchange("1", "my dog ran away", "That sounds very sad and unhappy and down."),
		exchange("1", "exam stress is crushing me", "You seem sad."),
		exchange("2", "I bombed the test", "Feeling down after that makes sense."),
	)
	got := NewMiner(f, tr, 3).Mine(context.Background(), emotion.Sad, style.Short, "I failed my exam")
	assert.Equal(t, []string{"I bombed the test", "exam stress is crushing me", "my dog ran away"}, users(got))
}

func TestMine_FallsBackToKeywordsOnEmbedFailure(t *testing.T) {
	f := embeddingtest.New()
	f.Fail = true
	tr := transcriptOf(
		exchange("1", "one", "You seem sad."),
		exchange("1", "two", "Sad and down, that is hard."),
	)
	got := NewMiner(f, tr, 3).Mine(context.Background(), emotion.Sad, style.Short, "I failed my exam")
	assert.Equal(t, []string{"two", "one"}, users(got))
}

func TestMine_LimitAndNil(t *testing.T) {
	var ex [][]corpus.Turn
	for i := 0; i < 6; i++ {
		ex = append(ex, exchange("s", "u", "okay"))
	}
	got := NewMiner(nil, transcriptOf(ex...), 0).Mine(context.Background(), emotion.Neutral, style.Short, "")
	require.Len(t, got, DefaultMaxExamples)

	assert.Nil(t, NewMiner(nil, nil, 3).Mine(context.Background(), emotion.Sad, style.Short, ""))
	var m *Miner
	assert.Nil(t, m.Mine(context.Background(), emotion.Sad, style.Short, ""))
}

func TestMine_IgnoresNonAdjacentRoles(t *testing.T) {
	tr := corpus.NewTranscript([]corpus.Turn{
		{SessionID: "1", Speaker: "therapist", Value: "You sound sad."},
		{SessionID: "1", Speaker: "client", Value: "I am."},
		{SessionID: "1", Speaker: "client", Value: "Really sad."},
		{SessionID: "2", Speaker: "therapist", Value: "That is sad to hear."},
	})
	assert.Empty(t, NewMiner(nil, tr, 3).Mine(context.Background(), emotion.Sad, style.Short, ""))
}
