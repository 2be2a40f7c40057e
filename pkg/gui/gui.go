package gui

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	pageGame = "game"
	pageMenu = "menu"

	showLogLines = 6
	storeTimeout = 5 * time.Second

	DefaultStatusText = "Arrows or HJKL move, Up/X/Z rotate, Space drops, Esc opens the menu"
)

// Menu buttons, in display order.
const (
	buttonResume = iota
	buttonSave
	buttonLoad
	buttonNew
	buttonExit
)

var menuButtons = []string{"Resume", "Save", "Load", "New game", "Exit"}

type GUI struct {
	App *tview.Application

	pages  *tview.Pages
	mtx    *tview.TextView
	side   *tview.TextView
	recent *tview.TextView
	status *tview.TextView
	menu   *tview.Modal

	driver *game.Driver
	store  store.Store
	slot   string

	renderer     *renderer
	renderLock   sync.Mutex
	renderBuffer bytes.Buffer

	scoreRecorded atomic.Bool
}

func New(d *game.Driver, st store.Store, slot string) *GUI {
	g := &GUI{
		App:      tview.NewApplication(),
		driver:   d,
		store:    st,
		slot:     slot,
		renderer: newRenderer(ThemeBasic),
	}

	newView := func() *tview.TextView {
		tv := tview.NewTextView().
			SetScrollable(false).
			SetTextAlign(tview.AlignLeft).
			SetWrap(false).
			SetWordWrap(false)
		tv.SetDynamicColors(true)
		return tv
	}

	g.mtx = newView()
	g.side = newView()
	g.recent = newView()
	g.status = newView().SetText(DefaultStatusText)

	var w, h int
	d.View(func(gm *game.Game) {
		w, h = gm.Width(), gm.Height()
	})

	grid := tview.NewGrid().
		SetBorders(false).
		SetRows(h+2, 1, -1).
		SetColumns(1, w*cellWidth+2, 14, -1).
		AddItem(tview.NewBox(), 0, 0, 3, 1, 0, 0, false).
		AddItem(g.mtx, 0, 1, 1, 1, 0, 0, false).
		AddItem(g.side, 0, 2, 1, 1, 0, 0, false).
		AddItem(g.status, 1, 1, 1, 3, 0, 0, false).
		AddItem(g.recent, 2, 1, 1, 3, 0, 0, false)

	g.menu = tview.NewModal().
		SetText("Paused").
		AddButtons(menuButtons).
		SetDoneFunc(g.menuSelected)

	g.pages = tview.NewPages().
		AddPage(pageGame, grid, true, true).
		AddPage(pageMenu, g.menu, false, false)

	g.App.SetRoot(g.pages, true)
	g.App.SetInputCapture(g.handleKeypress)

	d.OnTick = g.onTick
	g.draw()

	return g
}

// Run shows the UI and ticks the game until the player exits or ctx is done.
func (g *GUI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := g.driver.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("driver stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		g.App.Stop()
	}()

	return g.App.Run()
}

func (g *GUI) menuVisible() bool {
	name, _ := g.pages.GetFrontPage()
	return name == pageMenu
}

func (g *GUI) handleKeypress(ev *tcell.EventKey) *tcell.EventKey {
	if g.menuVisible() {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		g.openMenu("Paused")
		return nil
	case tcell.KeyCtrlC:
		return ev
	}

	g.driver.Submit(actionFor(ev))
	return nil
}

func (g *GUI) openMenu(text string) {
	g.driver.Pause()
	g.menu.SetText(text)
	g.pages.ShowPage(pageMenu)
	g.App.SetFocus(g.menu)
	g.draw()
}

func (g *GUI) closeMenu() {
	g.pages.HidePage(pageMenu)
	g.driver.Resume()
	g.draw()
}

// menuSelected handles a menu button. Escape reports index -1 and resumes.
func (g *GUI) menuSelected(index int, label string) {
	switch index {
	case buttonSave:
		g.menu.SetText(g.save())
	case buttonLoad:
		msg, ok := g.load()
		if !ok {
			g.menu.SetText(msg)
			return
		}
		g.closeMenu()
	case buttonNew:
		g.driver.Reset()
		g.scoreRecorded.Store(false)
		g.closeMenu()
	case buttonExit:
		g.App.Stop()
	default:
		g.closeMenu()
	}
}

func (g *GUI) save() string {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := g.store.Save(ctx, g.slot, g.driver.State()); err != nil {
		log.Error().Err(err).Str("slot", g.slot).Msg("failed to save")
		return fmt.Sprintf("Failed to save: %s", err)
	}

	return fmt.Sprintf("Saved to slot %s.", g.slot)
}

func (g *GUI) load() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	s, ok, err := g.store.Load(ctx, g.slot)
	if err != nil {
		log.Error().Err(err).Str("slot", g.slot).Msg("failed to load")
		return fmt.Sprintf("Failed to load: %s", err), false
	} else if !ok {
		return fmt.Sprintf("No saved game in slot %s.", g.slot), false
	}

	if err := g.driver.Restore(s); err != nil {
		log.Error().Err(err).Str("slot", g.slot).Msg("failed to restore")
		return fmt.Sprintf("Failed to load: %s", err), false
	}

	g.scoreRecorded.Store(s.Ended)
	return "", true
}

func (g *GUI) onTick(o game.Outcome) {
	if o.GameOver {
		g.RecordScore()
	}

	g.App.QueueUpdateDraw(g.draw)
}

// RecordScore stores the score of an ended game once.
func (g *GUI) RecordScore() {
	var (
		ended bool
		score int
	)
	g.driver.View(func(gm *game.Game) {
		ended, score = gm.Ended(), gm.Score()
	})
	if !ended || !g.scoreRecorded.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	err := g.store.RecordScore(ctx, store.Score{Slot: g.slot, Lines: score, At: time.Now()})
	if err != nil {
		log.Error().Err(err).Str("slot", g.slot).Msg("failed to record score")
		return
	}

	log.Info().Str("slot", g.slot).Int("lines", score).Msg("recorded score")
}

func (g *GUI) draw() {
	paused := g.driver.Paused()

	g.renderLock.Lock()
	defer g.renderLock.Unlock()

	g.driver.View(func(gm *game.Game) {
		g.renderer.renderMatrix(&g.renderBuffer, gm)
		g.mtx.Clear()
		g.mtx.Write(g.renderBuffer.Bytes())

		g.renderer.renderSide(&g.renderBuffer, gm, g.slot, paused)
		g.side.Clear()
		g.side.Write(g.renderBuffer.Bytes())
	})

	g.renderer.renderEvents(&g.renderBuffer, g.driver.Events().Events(), showLogLines)
	g.recent.Clear()
	g.recent.Write(g.renderBuffer.Bytes())
}
