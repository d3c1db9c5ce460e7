package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Turn is one speaker turn of a recorded session.
type Turn struct {
	SessionID string
	Speaker   string
	Value     string
	StartTime string
	StopTime  string
}

// Pair is an adjacent (user turn, assistant turn) exchange within one session.
type Pair struct {
	SessionID string
	User      string
	Assistant string
}

// IsUserRole reports whether speaker is a client/user role.
func IsUserRole(speaker string) bool {
	switch strings.ToLower(strings.TrimSpace(speaker)) {
	case "client", "user":
		return true
	}
	return false
}

// IsAssistantRole reports whether speaker is a therapist/assistant role.
func IsAssistantRole(speaker string) bool {
	switch strings.ToLower(strings.TrimSpace(speaker)) {
	case "therapist", "assistant":
		return true
	}
	return false
}

// Transcript groups turns by session, preserving file order within each
// session and first-appearance order across sessions.
type Transcript struct {
	order    []string
	sessions map[string][]Turn
	rows     int
}

// NewTranscript groups turns by SessionID.
func NewTranscript(turns []Turn) *Transcript {
	t := &Transcript{sessions: make(map[string][]Turn)}
	for _, turn := range turns {
		if _, ok := t.sessions[turn.SessionID]; !ok {
			t.order = append(t.order, turn.SessionID)
		}
		t.sessions[turn.SessionID] = append(t.sessions[turn.SessionID], turn)
		t.rows++
	}
	return t
}

// SessionCount returns the number of distinct sessions. Safe on nil.
func (t *Transcript) SessionCount() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Rows returns the number of turns loaded. Safe on nil.
func (t *Transcript) Rows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Session returns the turns of one session in file order.
func (t *Transcript) Session(id string) []Turn {
	if t == nil {
		return nil
	}
	return t.sessions[id]
}

// Pairs returns every adjacent user→assistant exchange, session by session.
func (t *Transcript) Pairs() []Pair {
	if t == nil {
		return nil
	}
	var pairs []Pair
	for _, id := range t.order {
		turns := t.sessions[id]
		for i := 0; i+1 < len(turns); i++ {
			if !IsUserRole(turns[i].Speaker) || !IsAssistantRole(turns[i+1].Speaker) {
				continue
			}
			pairs = append(pairs, Pair{
				SessionID: id,
				User:      turns[i].Value,
				Assistant: turns[i+1].Value,
			})
		}
	}
	return pairs
}

// transcriptColumns are the required CSV header names.
var transcriptColumns = []string{"session_id", "speaker", "value", "start_time", "stop_time"}

// LoadTranscript reads a session transcript CSV.
func LoadTranscript(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	t, err := ReadTranscript(f)
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("rows", t.Rows()).Int("sessions", t.SessionCount()).Msg("transcript loaded")
	return t, nil
}

// ReadTranscript parses CSV with a header row naming the transcript columns.
// Extra columns are ignored; column order is taken from the header.
func ReadTranscript(r io.Reader) (*Transcript, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	idx := make([]int, len(transcriptColumns))
	for i, col := range transcriptColumns {
		p, ok := pos[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		idx[i] = p
	}

	var turns []Turn
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(i int) string {
			if idx[i] < len(rec) {
				return rec[idx[i]]
			}
			return ""
		}
		turns = append(turns, Turn{
			SessionID: field(0),
			Speaker:   field(1),
			Value:     field(2),
			StartTime: field(3),
			StopTime:  field(4),
		})
	}

	return NewTranscript(turns), nil
}
