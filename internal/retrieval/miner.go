package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/corpus"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/emotion"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/logging"
	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/style"
)

// DefaultMaxExamples is the number of exemplars returned by Mine.
const DefaultMaxExamples = 3

// Bucket edges for the assistant reply length. Both edges are inclusive,
// so a 150 char reply is short and medium, a 300 char reply medium and long.
const (
	shortMaxChars = 150
	longMinChars  = 300
)

// Exemplar is a recorded (user, therapist) exchange used as a few-shot example.
type Exemplar struct {
	User     string
	Response string
}

var exemplarKeywords = map[emotion.Label][]string{
	emotion.Distressed: {"terrible", "breakdown", "can't take", "falling apart", "lowest"},
	emotion.Sad:        {"sad", "unhappy", "down", "depressed", "empty"},
	emotion.Anxious:    {"worried", "anxious", "nervous", "panic", "stress"},
	emotion.Angry:      {"angry", "frustrated", "irritated", "furious", "hate"},
	emotion.Neutral:    {"okay", "fine", "normal", "don't feel", "just here"},
	emotion.Content:    {"happy", "good", "well", "fine", "content"},
	emotion.Hopeful:    {"hopeful", "optimistic", "better", "progress", "forward"},
}

// Miner selects transcript exchanges that fit an emotion and reply length.
type Miner struct {
	embedder   embedding.Embedder
	transcript *corpus.Transcript
	max        int
}

// NewMiner returns a miner over transcript. embedder may be nil, in which
// case candidates are ranked by keyword count.
func NewMiner(embedder embedding.Embedder, transcript *corpus.Transcript, maxExamples int) *Miner {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}
	return &Miner{embedder: embedder, transcript: transcript, max: maxExamples}
}

type candidate struct {
	pair     corpus.Pair
	keywords int
}

// Mine returns up to MaxExamples exchanges whose therapist reply matches the
// length bucket and, except for neutral, mentions one of the emotion's
// keywords. Results are ranked by similarity to query when it can be
// embedded, by keyword count otherwise.
func (m *Miner) Mine(ctx context.Context, label emotion.Label, length style.LengthBucket, query string) []Exemplar {
	if m == nil || m.transcript == nil {
		return nil
	}
	keywords, ok := exemplarKeywords[label]
	if !ok {
		keywords = exemplarKeywords[emotion.Neutral]
	}

	var cands []candidate
	for _, p := range m.transcript.Pairs() {
		if !inBucket(len(p.Assistant), length) {
			continue
		}
		n := countKeywords(strings.ToLower(p.Assistant), keywords)
		if label != emotion.Neutral && n == 0 {
			continue
		}
		cands = append(cands, candidate{pair: p, keywords: n})
	}
	if len(cands) == 0 {
		return nil
	}

	if !m.rankBySimilarity(ctx, cands, query) {
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].keywords > cands[j].keywords })
	}

	if len(cands) > m.max {
		cands = cands[:m.max]
	}
	out := make([]Exemplar, len(cands))
	for i, c := range cands {
		out[i] = Exemplar{User: c.pair.User, Response: c.pair.Assistant}
	}
	return out
}

// rankBySimilarity sorts cands by cosine similarity between query and the
// user turn. It reports false, leaving cands untouched, when that is not
// possible.
func (m *Miner) rankBySimilarity(ctx context.Context, cands []candidate, query string) bool {
	if strings.TrimSpace(query) == "" || !embedding.Usable(m.embedder) {
		return false
	}
	logger := logging.Component("miner")

	q, err := m.embedder.Embed(ctx, query)
	if err != nil {
		logger.Debug().Err(err).Msg("query embedding failed; ranking exemplars by keywords")
		return false
	}
	users := make([]string, len(cands))
	for i, c := range cands {
		users[i] = c.pair.User
	}
	vecs, err := m.embedder.EmbedBatch(ctx, users)
	if err != nil || len(vecs) != len(cands) {
		logger.Debug().Err(err).Msg("exemplar embedding failed; ranking exemplars by keywords")
		return false
	}

	scores := make([]float64, len(cands))
	for i := range cands {
		scores[i] = q.CosineSimilarity(vecs[i])
	}
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	sorted := make([]candidate, len(cands))
	for i, j := range idx {
		sorted[i] = cands[j]
	}
	copy(cands, sorted)
	return true
}

func inBucket(n int, b style.LengthBucket) bool {
	switch b {
	case style.Short:
		return n <= shortMaxChars
	case style.Long:
		return n >= longMinChars
	default:
		return n >= shortMaxChars && n <= longMinChars
	}
}

func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}
