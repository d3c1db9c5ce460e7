package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"scaled", Vector{1, 1}, Vector{5, 5}, 1},
		{"length mismatch", Vector{1, 2}, Vector{1, 2, 3}, 0},
		{"empty", Vector{}, Vector{}, 0},
		{"zero vector", Vector{0, 0}, Vector{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.CosineSimilarity(tt.b), 1e-6)
		})
	}
}

func TestNormalize(t *testing.T) {
	n := Vector{3, 4}.Normalize()
	assert.InDelta(t, 0.6, n[0], 1e-6)
	assert.InDelta(t, 0.8, n[1], 1e-6)

	zero := Vector{0, 0}
	assert.Equal(t, zero, zero.Normalize())
}

func TestBytesRoundTrip(t *testing.T) {
	v := Vector{0.25, -1.5, float32(math.Pi)}
	assert.Equal(t, v, FromBytes(v.ToBytes()))

	assert.Nil(t, Vector{}.ToBytes())
	assert.Nil(t, FromBytes([]byte{1, 2, 3}))
}

func TestMaxAndMeanSimilarity(t *testing.T) {
	q := Vector{1, 0}
	refs := []Vector{{1, 0}, {0, 1}, {-1, 0}}

	assert.InDelta(t, 1.0, MaxSimilarity(q, refs), 1e-6)
	assert.InDelta(t, 0.0, MeanSimilarity(q, refs), 1e-6)

	assert.Equal(t, -1.0, MaxSimilarity(q, nil))
	assert.Equal(t, 0.0, MeanSimilarity(q, nil))
}

func TestFromFloat64(t *testing.T) {
	assert.Equal(t, Vector{1, 0.5}, FromFloat64([]float64{1, 0.5}))
}
