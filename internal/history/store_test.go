package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	// Deterministic, strictly increasing clock.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := s.Save(ctx, "alice", fmt.Sprintf("q%d", i), engine.Response{
			Text:           fmt.Sprintf("r%d", i),
			EmotionalState: emotion.Sad,
			Confidence:     0.7,
		})
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, "bob", "other", engine.Response{Text: "x"})
	require.NoError(t, err)

	turns, err := s.Recent(ctx, "alice", 5)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	assert.Equal(t, engine.Turn{Query: "q3", Response: "r3"}, turns[0])
	assert.Equal(t, engine.Turn{Query: "q7", Response: "r7"}, turns[4])

	turns, err = s.Recent(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Equal(t, []engine.Turn{{Query: "other", Response: "x"}}, turns)

	turns, err = s.Recent(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMessages_Fields(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "alice", "I hate this", engine.Response{
		Text: "That sounds frustrating.", EmotionalState: emotion.Angry, Confidence: 0.9,
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	msgs, err := s.Messages(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	m := msgs[0]
	assert.Equal(t, id, m.ID)
	assert.Equal(t, emotion.Angry, m.EmotionalState)
	assert.InDelta(t, 0.9, m.Confidence, 1e-9)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC), m.CreatedAt.UTC())
}

func TestEmotions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, l := range []emotion.Label{emotion.Distressed, emotion.Sad, emotion.Neutral, emotion.Hopeful} {
		_, err := s.Save(ctx, "alice", "q", engine.Response{Text: "r", EmotionalState: l})
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, "alice", "q", engine.Response{Text: "r", EmotionalState: emotion.Label("bogus")})
	require.NoError(t, err)

	labels, err := s.Emotions(ctx, "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, []emotion.Label{emotion.Neutral, emotion.Hopeful, emotion.Neutral}, labels)
}

func TestSave_RequiresUser(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Save(context.Background(), "  ", "q", engine.Response{})
	assert.ErrorIs(t, err, ErrEmptyUser)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Save(ctx, "alice", "q", engine.Response{Text: "r"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Health(ctx))

	turns, err := s.Recent(ctx, "alice", 5)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
