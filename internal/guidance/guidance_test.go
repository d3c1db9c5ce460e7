package guidance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

func TestTone_EveryLabelHasText(t *testing.T) {
	seen := make(map[string]emotion.Label)
	for _, l := range emotion.Labels {
		g := Tone(l)
		assert.True(t, strings.HasSuffix(strings.SplitN(g, "\n", 2)[0], "Your response should:"), l)
		assert.Contains(t, g, "\n- ", l)
		if prev, dup := seen[g]; dup {
			t.Errorf("%s shares guidance with %s", l, prev)
		}
		seen[g] = l
	}
}

func TestTone_Fallback(t *testing.T) {
	assert.Equal(t, Tone(emotion.Neutral), Tone(emotion.Label("elated")))
	assert.Equal(t, Tone(emotion.Neutral), Tone(""))
}

func TestTone_Distressed(t *testing.T) {
	g := Tone(emotion.Distressed)
	assert.True(t, strings.HasPrefix(g, "This user is in significant distress."))
	assert.Contains(t, g, "- Provide clear, simple grounding techniques")
	assert.Equal(t, 8, len(strings.Split(g, "\n")))
}

func TestLength(t *testing.T) {
	assert.Contains(t, Length(style.Short), "1-2 short paragraphs")
	assert.Contains(t, Length(style.Medium), "2-3 paragraphs")
	assert.Contains(t, Length(style.Long), "4+ paragraphs")
	assert.Equal(t, Length(style.Medium), Length(style.LengthBucket("huge")))

	for _, b := range style.Buckets {
		assert.Equal(t, strings.TrimSpace(Length(b)), Length(b), b)
	}
}
