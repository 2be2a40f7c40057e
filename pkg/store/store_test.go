package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/mino"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState(t *testing.T) *game.State {
	t.Helper()

	g := game.NewGame(game.WithSource(mino.NewSequenceSource(mino.ShapeL, mino.ShapeS)))
	g.Submit(event.ActionHardDrop)
	g.Tick()
	g.Submit(event.ActionRotateCW)

	return g.State()
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "blockterm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		DriverFile:   NewFileStore(filepath.Join(t.TempDir(), "saves")),
		DriverSQLite: sq,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			s, ok, err := st.Load(ctx, "default")
			require.NoError(t, err)
			assert.False(t, ok, "no saved state yet")
			assert.Nil(t, s)

			want := testState(t)
			require.NoError(t, st.Save(ctx, "default", want))

			got, ok, err := st.Load(ctx, "default")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, got)

			want.Score = 12
			require.NoError(t, st.Save(ctx, "default", want))
			got, _, err = st.Load(ctx, "default")
			require.NoError(t, err)
			assert.Equal(t, 12, got.Score)

			_, ok, err = st.Load(ctx, "other")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreRejectsSlot(t *testing.T) {
	ctx := context.Background()

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, slot := range []string{"", "../etc", ".hidden", "a/b", "spaced out"} {
				_, _, err := st.Load(ctx, slot)
				assert.ErrorIs(t, err, ErrInvalidSlot, "slot %q", slot)
				assert.ErrorIs(t, st.Save(ctx, slot, testState(t)), ErrInvalidSlot, "slot %q", slot)
			}
		})
	}
}

func TestStoreScores(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			scores, err := st.TopScores(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, scores)

			require.NoError(t, st.RecordScore(ctx, Score{Slot: "ann", Lines: 4, At: now}))
			require.NoError(t, st.RecordScore(ctx, Score{Slot: "bob", Lines: 9, At: now.Add(time.Minute)}))
			require.NoError(t, st.RecordScore(ctx, Score{Slot: "cid", Lines: 4, At: now.Add(-time.Minute)}))

			scores, err = st.TopScores(ctx, 2)
			require.NoError(t, err)
			require.Len(t, scores, 2)
			assert.Equal(t, "bob", scores[0].Slot)
			assert.Equal(t, 9, scores[0].Lines)
			assert.Equal(t, "cid", scores[1].Slot)
			assert.True(t, now.Add(-time.Minute).Equal(scores[1].At))
		})
	}
}

func TestStoreDefaultScoreLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, st := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < DefaultScoreLimit+5; i++ {
				require.NoError(t, st.RecordScore(ctx, Score{
					Slot:  fmt.Sprintf("p%02d", i),
					Lines: i,
					At:    now.Add(time.Duration(i) * time.Minute),
				}))
			}

			for _, limit := range []int{0, -1} {
				scores, err := st.TopScores(ctx, limit)
				require.NoError(t, err)
				require.Len(t, scores, DefaultScoreLimit, "limit %d", limit)
				assert.Equal(t, DefaultScoreLimit+4, scores[0].Lines)
			}

			scores, err := st.TopScores(ctx, 100)
			require.NoError(t, err)
			assert.Len(t, scores, DefaultScoreLimit+5)
		})
	}
}

func TestSQLiteDSNWithQuery(t *testing.T) {
	assert.Equal(t, "a.db?_busy_timeout=1", withParams("a.db", "_busy_timeout=1"))
	assert.Equal(t, "a.db?cache=shared&_busy_timeout=1", withParams("a.db?cache=shared", "_busy_timeout=1"))

	path := filepath.Join(t.TempDir(), "nested", "blockterm.db")
	st, err := OpenSQLite(path + "?cache=shared")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.RecordScore(ctx, Score{Slot: "ann", Lines: 2, At: time.Now()}))
	scores, err := st.TopScores(ctx, 1)
	require.NoError(t, err)
	require.Len(t, scores, 1)

	_, err = os.Stat(path)
	assert.NoError(t, err, "database created at the path before the query")
}

func TestFileStoreKeepsBest(t *testing.T) {
	ctx := context.Background()
	st := NewFileStore(t.TempDir())

	require.NoError(t, st.RecordScore(ctx, Score{Slot: "ann", Lines: 7}))
	require.NoError(t, st.RecordScore(ctx, Score{Slot: "ann", Lines: 3}))

	scores, err := st.TopScores(ctx, 0)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 7, scores[0].Lines)
}

func TestFileStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte("  \n"), 0o644))

	s, ok, err := NewFileStore(dir).Load(context.Background(), "default")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte(`{"ended": "yes"}`), 0o644))

	_, ok, err := NewFileStore(dir).Load(context.Background(), "default")
	assert.ErrorIs(t, err, game.ErrInvalidState)
	assert.False(t, ok)
}

func TestFileStoreUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "default.json"), 0o755))

	_, ok, err := NewFileStore(dir).Load(context.Background(), "default")
	assert.Error(t, err, "a directory in place of the save is an I/O failure")
	assert.NotErrorIs(t, err, game.ErrInvalidState)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	st, err := Open(DriverFile, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, st)

	st, err = Open(DriverSQLite, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	assert.NoError(t, st.Close())

	_, err = Open("redis", "")
	assert.Error(t, err)
}
