package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/swipeserve/pkg/decoder"
	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "traces", "traces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRecordAndGet(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	samples := []gesture.TimestampedPoint{
		{Position: keys.Pt(1, 2), Time: 0},
		{Position: keys.Pt(3.5, -4), Time: 0.016},
	}
	id, err := st.Record(ctx, Trace{
		Layout:     "grid",
		Samples:    samples,
		Hits:       "he",
		TopWord:    "he",
		Candidates: []string{"he", "hey"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, uuid.Version(4), id.Version())

	got, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "grid", got.Layout)
	assert.Equal(t, samples, got.Samples)
	assert.Equal(t, "he", got.TopWord)
	assert.Equal(t, []string{"he", "hey"}, got.Candidates)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetUnknown(t *testing.T) {
	st := openTemp(t)
	_, err := st.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, word := range []string{"one", "two", "three"} {
		_, err := st.Record(ctx, Trace{
			CreatedAt: base.Add(time.Duration(i) * time.Second),
			Layout:    "ring",
			TopWord:   word,
		})
		require.NoError(t, err)
	}

	all, err := st.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].TopWord)
	assert.Equal(t, "one", all[2].TopWord)
	assert.Empty(t, all[0].Samples)
	assert.Empty(t, all[0].Candidates)

	two, err := st.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestReplay(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	layout := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	samples := gesture.Synthesize("hello", layout, gesture.DefaultSynthOptions())
	hits := gesture.Track(layout, gesture.DefaultParams(), samples)

	id, err := st.Record(ctx, Trace{Layout: "grid", Samples: samples, Hits: HitString(hits)})
	require.NoError(t, err)

	trace, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, HitString(hits), trace.Hits)

	dec := decoder.New(dictionary.Build([]string{"hello", "hell", "help", "held", "hole"}), nil, decoder.DefaultParams())
	replayed, ranked := Replay(trace, layout, gesture.DefaultParams(), dec, 3)
	assert.Equal(t, hits, replayed)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "hello", ranked[0].Word)
}

func TestReplayStartsOnInitialKey(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	layout := keys.NewGridLayout(keys.QwertyRows, keys.DefaultGridGeometry())
	samples := gesture.Synthesize("hello", layout, gesture.DefaultSynthOptions())
	dec := decoder.New(dictionary.Build([]string{"hello", "jello"}), nil, decoder.DefaultParams())

	id, err := st.Record(ctx, Trace{Layout: "grid", Samples: samples, InitialKey: "j"})
	require.NoError(t, err)
	trace, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "j", trace.InitialKey)

	hits, _ := Replay(trace, layout, gesture.DefaultParams(), dec, 3)
	require.NotEmpty(t, hits)
	assert.Equal(t, 'j', hits[0].Key.Char)

	trace.InitialKey = ""
	hits, _ = Replay(trace, layout, gesture.DefaultParams(), dec, 3)
	require.NotEmpty(t, hits)
	assert.Equal(t, 'h', hits[0].Key.Char)

	hits, ranked := Replay(Trace{}, layout, gesture.DefaultParams(), dec, 3)
	assert.Nil(t, hits)
	assert.Nil(t, ranked)
}

func TestOpenAddsInitialKeyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE traces (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		layout TEXT NOT NULL,
		samples BLOB NOT NULL,
		hits TEXT NOT NULL,
		top_word TEXT NOT NULL,
		candidates TEXT NOT NULL
	)`)
	require.NoError(t, err)
	blob, err := msgpack.Marshal([]gesture.TimestampedPoint{{Position: keys.Pt(1, 1)}})
	require.NoError(t, err)
	id := uuid.New()
	_, err = db.Exec(`INSERT INTO traces VALUES (?, ?, 'ring', ?, 'e', 'e', 'e')`, id.String(), time.Now().UnixNano(), blob)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	trace, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ring", trace.Layout)
	assert.Empty(t, trace.InitialKey)
	assert.Len(t, trace.Samples, 1)
}
