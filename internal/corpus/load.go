package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

// jsonCorpus is the offline export format: parallel texts and embeddings.
type jsonCorpus struct {
	Texts      []string    `json:"texts"`
	Embeddings [][]float64 `json:"embeddings"`
}

// Load reads a corpus from a .json export or a SQLite corpus database,
// chosen by file extension.
func Load(ctx context.Context, path string) (*Corpus, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path)
	default:
		return LoadJSON(path)
	}
}

// LoadJSON reads a {"texts": [...], "embeddings": [[...]]} file.
func LoadJSON(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	c, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("entries", c.Len()).Int("dim", c.Dimension()).Msg("corpus loaded")
	return c, nil
}

// ReadJSON decodes the JSON export format from r.
func ReadJSON(r io.Reader) (*Corpus, error) {
	var raw jsonCorpus
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	vectors := make([]embedding.Vector, len(raw.Embeddings))
	for i, row := range raw.Embeddings {
		vectors[i] = embedding.FromFloat64(row)
	}
	return New(raw.Texts, vectors)
}
