// Package embedding maps text to fixed-length vectors and provides the vector
// arithmetic used by every similarity-driven component.
package embedding

import (
	"encoding/binary"
	"math"
)

// Vector represents a sentence embedding (float32 slice).
type Vector []float32

// FromFloat64 converts an API-shaped []float64 into a Vector.
func FromFloat64(values []float64) Vector {
	v := make(Vector, len(values))
	for i, f := range values {
		v[i] = float32(f)
	}
	return v
}

// ToBytes serializes a vector to little-endian float32 bytes for database storage.
func (v Vector) ToBytes() []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// FromBytes deserializes bytes written by ToBytes.
// Returns nil when the length is not a multiple of four.
func FromBytes(data []byte) Vector {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	v := make(Vector, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1; mismatched or zero vectors score 0.
func (v Vector) CosineSimilarity(other Vector) float64 {
	if len(v) != len(other) || len(v) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range v {
		a, b := float64(v[i]), float64(other[i])
		dot += a * b
		normA += a * a
		normB += b * b
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize returns a unit-length copy of the vector.
func (v Vector) Normalize() Vector {
	if len(v) == 0 {
		return v
	}

	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	if norm == 0 {
		return v
	}

	norm = math.Sqrt(norm)
	out := make(Vector, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

// MaxSimilarity returns the highest cosine similarity between q and any of refs.
// Returns -1 when refs is empty.
func MaxSimilarity(q Vector, refs []Vector) float64 {
	best := -1.0
	for _, r := range refs {
		if s := q.CosineSimilarity(r); s > best {
			best = s
		}
	}
	return best
}

// MeanSimilarity returns the average cosine similarity between q and refs.
// Returns 0 when refs is empty.
func MeanSimilarity(q Vector, refs []Vector) float64 {
	if len(refs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range refs {
		sum += q.CosineSimilarity(r)
	}
	return sum / float64(len(refs))
}
