package game

import (
	"time"

	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/mino"
)

// FallPeriod is the number of ticks between two gravity steps.
const FallPeriod = 50

// Outcome reports what a single tick did beyond moving the piece. The zero
// value means nothing happened.
type Outcome struct {
	Locked   bool
	Shape    mino.Shape
	Cleared  int
	GameOver bool
}

func (o Outcome) None() bool {
	return !o.Locked && !o.GameOver
}

// Game is the falling-block engine. It is not safe for concurrent use; see
// Driver.
type Game struct {
	matrix        *mino.Matrix
	piece         mino.Piece
	score         int
	fallCountdown int
	ended         bool

	fallPeriod int
	spawn      mino.Point
	source     mino.ShapeSource
}

type Option func(*Game)

func WithSize(w int, h int) Option {
	return func(g *Game) {
		g.matrix = mino.NewMatrix(w, h)
	}
}

func WithFallPeriod(ticks int) Option {
	return func(g *Game) {
		g.fallPeriod = ticks
	}
}

func WithSource(src mino.ShapeSource) Option {
	return func(g *Game) {
		g.source = src
	}
}

func NewGame(options ...Option) *Game {
	g := &Game{
		matrix:     mino.NewMatrix(mino.DefaultWidth, mino.DefaultHeight),
		fallPeriod: FallPeriod,
	}
	for _, opt := range options {
		opt(g)
	}

	if g.source == nil {
		g.source = mino.NewRandomSource(time.Now().UnixNano())
	}
	g.spawn = mino.Point{X: g.matrix.W/2 - 1, Y: 1}

	g.Reset()

	return g
}

// Reset starts a new game on an empty matrix.
func (g *Game) Reset() {
	g.matrix.Clear()
	g.score = 0
	g.ended = false
	g.fallCountdown = g.fallPeriod
	g.piece = mino.NewPiece(g.source.Next(), g.spawn)
}

// Submit sets the action applied on the next tick, replacing any action not
// yet consumed.
func (g *Game) Submit(a event.GameAction) {
	if !a.Valid() {
		a = event.ActionNone
	}

	g.piece.SetAction(a)
}

// Tick advances the game by one step.
func (g *Game) Tick() Outcome {
	var o Outcome
	if g.ended {
		return o
	}

	switch a := g.piece.Action; {
	case a == event.ActionHardDrop:
		for g.canMove(event.ActionSoftDrop) {
			g.piece.Fall()
		}
		g.piece.SetAction(event.ActionNone)
		g.fallCountdown = 0
	case g.canMove(a):
		g.piece.Apply()
		if a == event.ActionSoftDrop {
			g.fallCountdown = g.fallPeriod
		}
	default:
		g.piece.SetAction(event.ActionNone)
	}

	if g.fallCountdown == 0 {
		if g.canMove(event.ActionSoftDrop) {
			g.piece.Fall()
		} else {
			o = g.lock()
		}

		g.fallCountdown = g.fallPeriod
	}

	g.fallCountdown--

	return o
}

func (g *Game) canMove(a event.GameAction) bool {
	cells, ok := g.piece.Project(a)
	return ok && g.matrix.CanAdd(cells)
}

func (g *Game) lock() Outcome {
	o := Outcome{Locked: true, Shape: g.piece.Shape}

	g.matrix.Add(g.piece.Cells(), g.piece.Shape)

	o.Cleared = g.matrix.ClearFilled()
	if o.Cleared > 0 {
		g.score += o.Cleared
	}

	g.piece = mino.NewPiece(g.source.Next(), g.spawn)
	for _, c := range g.piece.Cells() {
		if !g.matrix.Empty(c) {
			g.ended = true
			o.GameOver = true
			break
		}
	}

	return o
}

// SetBlock fills a single empty matrix cell, as when pre-filling a board.
func (g *Game) SetBlock(x int, y int, s mino.Shape) bool {
	if !s.Playable() {
		return false
	}

	return g.matrix.SetBlock(x, y, s)
}

func (g *Game) Width() int  { return g.matrix.W }
func (g *Game) Height() int { return g.matrix.H }

func (g *Game) Block(x int, y int) mino.Shape {
	return g.matrix.Block(x, y)
}

// Matrix returns a copy of the settled cells.
func (g *Game) Matrix() *mino.Matrix {
	return g.matrix.Clone()
}

// Piece returns a copy of the active piece.
func (g *Game) Piece() mino.Piece {
	return g.piece
}

func (g *Game) Score() int         { return g.score }
func (g *Game) Ended() bool        { return g.ended }
func (g *Game) FallCountdown() int { return g.fallCountdown }
func (g *Game) FallPeriod() int    { return g.fallPeriod }
func (g *Game) Spawn() mino.Point  { return g.spawn }

// Render draws the matrix with the active piece on top.
func (g *Game) Render() string {
	p := g.piece
	return g.matrix.Render(&p)
}
