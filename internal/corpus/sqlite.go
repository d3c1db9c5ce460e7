package corpus

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/embedding"
)

//go:embed schema.sql
var corpusSchema string

// LoadSQLite reads the corpus table written by WriteSQLite, in id order.
func LoadSQLite(ctx context.Context, path string) (*Corpus, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT text, embedding FROM corpus ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	var texts []string
	var vectors []embedding.Vector
	for rows.Next() {
		var text string
		var blob []byte
		if err := rows.Scan(&text, &blob); err != nil {
			return nil, fmt.Errorf("scan corpus row: %w", err)
		}
		texts = append(texts, text)
		vectors = append(vectors, embedding.FromBytes(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus rows: %w", err)
	}

	c, err := New(texts, vectors)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("entries", c.Len()).Int("dim", c.Dimension()).Msg("corpus loaded")
	return c, nil
}

// WriteSQLite stores c into a SQLite database at path, replacing any
// existing corpus table contents. Used by `warda corpus import`.
func WriteSQLite(ctx context.Context, c *Corpus, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open corpus database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, corpusSchema); err != nil {
		return fmt.Errorf("create corpus schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus`); err != nil {
		return fmt.Errorf("clear corpus: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO corpus (id, text, embedding) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < c.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, i, c.Text(i), c.Vector(i).ToBytes()); err != nil {
			return fmt.Errorf("insert corpus entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus: %w", err)
	}
	return nil
}
