// Package store records gestures to SQLite so they can be replayed against
// different tuning offline.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned by Get for an unknown trace id.
var ErrNotFound = errors.New("store: trace not found")

// Trace is one recorded gesture with what the decoder made of it.
type Trace struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Layout     string
	Samples    []gesture.TimestampedPoint
	// InitialKey is the key the host reported under the first touch of a
	// streamed gesture, empty when it reported none.
	InitialKey string
	Hits       string
	TopWord    string
	Candidates []string
}

// Store wraps the trace database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the trace database at path.
func Open(path string) (*Store, error) {
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; recordings arrive from several goroutines
	db.SetMaxOpenConns(1)

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS traces (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			layout TEXT NOT NULL,
			samples BLOB NOT NULL,
			hits TEXT NOT NULL,
			top_word TEXT NOT NULL,
			candidates TEXT NOT NULL,
			initial_key TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_traces_created_at ON traces(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	// databases written before initial keys were recorded
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('traces') WHERE name = 'initial_key'`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.db.Exec(`ALTER TABLE traces ADD COLUMN initial_key TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}
	return nil
}

// Record stores t. A zero ID gets a fresh random one and a zero CreatedAt
// the current time.
func (s *Store) Record(ctx context.Context, t Trace) (uuid.UUID, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	blob, err := msgpack.Marshal(t.Samples)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode samples: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO traces (id, created_at, layout, samples, hits, top_word, candidates, initial_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(),
		t.CreatedAt.UnixNano(),
		t.Layout,
		blob,
		t.Hits,
		t.TopWord,
		strings.Join(t.Candidates, " "),
		t.InitialKey,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert trace: %w", err)
	}
	return t.ID, nil
}

// Get returns the trace with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Trace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, layout, samples, hits, top_word, candidates, initial_key
		 FROM traces WHERE id = ?`, id.String())
	t, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Trace{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, err
}

// List returns up to limit traces, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Trace, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, layout, samples, hits, top_word, candidates, initial_key
		 FROM traces ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traces []Trace
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		traces = append(traces, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return traces, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrace(row scanner) (Trace, error) {
	var (
		t          Trace
		id         string
		created    int64
		blob       []byte
		candidates string
	)
	if err := row.Scan(&id, &created, &t.Layout, &blob, &t.Hits, &t.TopWord, &candidates, &t.InitialKey); err != nil {
		return Trace{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Trace{}, fmt.Errorf("trace id %q: %w", id, err)
	}
	if err := msgpack.Unmarshal(blob, &t.Samples); err != nil {
		return Trace{}, fmt.Errorf("decode samples of %s: %w", id, err)
	}
	t.ID = parsed
	t.CreatedAt = time.Unix(0, created)
	t.Candidates = strings.Fields(candidates)
	return t, nil
}

// Replay runs the recorded gesture through a tracker and decoder with the
// given tuning, starting on the recorded initial key when it is on layout.
// It returns the hits and up to n candidates.
func Replay(t Trace, layout keys.KeyLookup, params gesture.Params, dec *decoder.Decoder, n int) ([]gesture.WeightedKeyHit, []decoder.Candidate) {
	if len(t.Samples) == 0 {
		return nil, nil
	}
	var initial *keys.KeyDescriptor
	if r := []rune(t.InitialKey); len(r) > 0 {
		if k, ok := keys.ByChar(layout, r[0]); ok {
			initial = &k
		}
	}

	tr := gesture.NewTracker(layout, params)
	first := t.Samples[0]
	tr.Begin(first.Position, first.Time, initial)
	for _, p := range t.Samples[1:] {
		tr.AddSample(p.Position, p.Time)
	}
	hits := tr.Finalize()
	return hits, dec.Rank(hits, n)
}

// HitString renders hits as their key characters.
func HitString(hits []gesture.WeightedKeyHit) string {
	var b strings.Builder
	for _, h := range hits {
		b.WriteRune(h.Key.Char)
	}
	return b.String()
}
