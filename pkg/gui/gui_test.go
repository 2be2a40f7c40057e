package gui

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/mino"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	states map[string]*game.State
	scores []store.Score

	sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*game.State)}
}

func (m *memStore) Load(ctx context.Context, slot string) (*game.State, bool, error) {
	m.Lock()
	defer m.Unlock()

	s, ok := m.states[slot]
	return s, ok, nil
}

func (m *memStore) Save(ctx context.Context, slot string, s *game.State) error {
	m.Lock()
	defer m.Unlock()

	m.states[slot] = s
	return nil
}

func (m *memStore) RecordScore(ctx context.Context, score store.Score) error {
	m.Lock()
	defer m.Unlock()

	m.scores = append(m.scores, score)
	return nil
}

func (m *memStore) TopScores(ctx context.Context, limit int) ([]store.Score, error) {
	return m.scores, nil
}

func (m *memStore) Close() error { return nil }

func newTestGUI(t *testing.T) (*GUI, *game.Driver, *memStore) {
	t.Helper()

	g := game.NewGame(game.WithSource(mino.NewSequenceSource(mino.ShapeLine)))
	d := game.NewDriver(g, time.Millisecond, zerolog.Nop())
	st := newMemStore()

	return New(d, st, "default"), d, st
}

func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

func pendingAction(d *game.Driver) event.GameAction {
	var a event.GameAction
	d.View(func(g *game.Game) {
		a = g.Piece().Action
	})
	return a
}

func TestActionFor(t *testing.T) {
	var tests = []struct {
		ev   *tcell.EventKey
		want event.GameAction
	}{
		{key(tcell.KeyLeft, 0), event.ActionMoveLeft},
		{key(tcell.KeyRight, 0), event.ActionMoveRight},
		{key(tcell.KeyDown, 0), event.ActionSoftDrop},
		{key(tcell.KeyUp, 0), event.ActionRotateCW},
		{key(tcell.KeyRune, 'z'), event.ActionRotateCCW},
		{key(tcell.KeyRune, 'X'), event.ActionRotateCW},
		{key(tcell.KeyRune, ' '), event.ActionHardDrop},
		{key(tcell.KeyRune, 'h'), event.ActionMoveLeft},
		{key(tcell.KeyRune, 'q'), event.ActionNone},
		{key(tcell.KeyTab, 0), event.ActionNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, actionFor(tt.ev), "key %s", tt.ev.Name())
	}
}

func TestHandleKeypress(t *testing.T) {
	g, d, _ := newTestGUI(t)

	assert.Nil(t, g.handleKeypress(key(tcell.KeyLeft, 0)))
	assert.Equal(t, event.ActionMoveLeft, pendingAction(d))

	g.handleKeypress(key(tcell.KeyRune, 'q'))
	assert.Equal(t, event.ActionNone, pendingAction(d), "unbound keys clear the pending action")

	ctrlC := tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)
	assert.Equal(t, ctrlC, g.handleKeypress(ctrlC))
}

func TestMenu(t *testing.T) {
	g, d, st := newTestGUI(t)

	g.handleKeypress(key(tcell.KeyEscape, 0))
	require.True(t, g.menuVisible())
	assert.True(t, d.Paused())

	ev := key(tcell.KeyLeft, 0)
	assert.Equal(t, ev, g.handleKeypress(ev), "keys go to the menu while it is open")
	assert.Equal(t, event.ActionNone, pendingAction(d))

	g.menuSelected(buttonLoad, "Load")
	assert.True(t, g.menuVisible(), "nothing to load")

	g.menuSelected(buttonSave, "Save")
	require.Contains(t, st.states, "default")
	saved := st.states["default"]

	d.View(func(gm *game.Game) {
		gm.SetBlock(0, 19, mino.ShapeZ)
	})

	g.menuSelected(buttonLoad, "Load")
	assert.False(t, g.menuVisible())
	assert.False(t, d.Paused())
	assert.Equal(t, saved, d.State())

	g.handleKeypress(key(tcell.KeyEscape, 0))
	g.menuSelected(-1, "")
	assert.False(t, g.menuVisible(), "escape resumes")
	assert.False(t, d.Paused())
}

func TestMenuNewGame(t *testing.T) {
	g, d, _ := newTestGUI(t)
	d.View(func(gm *game.Game) {
		gm.SetBlock(0, 19, mino.ShapeZ)
	})

	g.handleKeypress(key(tcell.KeyEscape, 0))
	g.menuSelected(buttonNew, "New game")

	assert.False(t, g.menuVisible())
	d.View(func(gm *game.Game) {
		assert.Equal(t, mino.ShapeEmpty, gm.Block(0, 19))
	})
}

func TestRecordScore(t *testing.T) {
	g, d, st := newTestGUI(t)

	g.RecordScore()
	assert.Empty(t, st.scores, "game still running")

	s := d.State()
	s.Ended = true
	s.Score = 5
	require.NoError(t, d.Restore(s))
	g.scoreRecorded.Store(false)

	g.RecordScore()
	g.RecordScore()
	require.Len(t, st.scores, 1)
	assert.Equal(t, "default", st.scores[0].Slot)
	assert.Equal(t, 5, st.scores[0].Lines)
}

func TestRenderMatrix(t *testing.T) {
	r := newRenderer(ThemeBasic)
	g := game.NewGame(game.WithSource(mino.NewSequenceSource(mino.ShapeLine)))
	g.SetBlock(0, 19, mino.ShapeT)

	var buf bytes.Buffer
	r.renderMatrix(&buf, g)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, g.Height()+2)

	assert.NotContains(t, lines[1], "█")
	assert.Equal(t, 4, strings.Count(lines[2], string(r.block(mino.ShapeLine))), "active piece on row 1")
	assert.Equal(t, 1, strings.Count(lines[20], string(r.block(mino.ShapeT))))
	assert.Contains(t, lines[0], string(tcell.RuneULCorner))
	assert.Contains(t, lines[21], string(tcell.RuneLRCorner))
}

func TestRenderSide(t *testing.T) {
	r := newRenderer(ThemeBasic)
	g := game.NewGame()

	var buf bytes.Buffer
	r.renderSide(&buf, g, "ann", true)
	assert.Contains(t, buf.String(), "ann")
	assert.Contains(t, buf.String(), "PAUSED")
	assert.NotContains(t, buf.String(), "GAME OVER")
}

func TestRenderEvents(t *testing.T) {
	r := newRenderer(ThemeBasic)

	var events []event.Event
	for i := 0; i < 10; i++ {
		events = append(events, event.Event{Time: time.Date(2024, 1, 1, 10, 0, i, 0, time.UTC), Message: string(rune('a' + i))})
	}

	var buf bytes.Buffer
	r.renderEvents(&buf, events, 3)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], " h"))
	assert.Contains(t, lines[2], "10:00:09")
}

func BenchmarkRenderMatrix(b *testing.B) {
	r := newRenderer(ThemeBasic)
	g := game.NewGame(game.WithSource(mino.NewRandomSource(1)))
	for x := 0; x < g.Width()-1; x++ {
		g.SetBlock(x, 19, mino.ShapeS)
	}

	var buf bytes.Buffer

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		r.renderMatrix(&buf, g)
	}
}
