package mino

import (
	"fmt"

	"github.com/qnkhuat/blockterm/pkg/event"
)

// Piece is the falling piece under player control. It is a plain value:
// copies never share offsets with the original.
type Piece struct {
	Shape   Shape
	Centre  Point
	Offsets Offsets
	Action  event.GameAction
}

func NewPiece(s Shape, centre Point) Piece {
	return Piece{Shape: s, Centre: centre, Offsets: s.Offsets(), Action: event.ActionNone}
}

func (p Piece) String() string {
	return fmt.Sprintf("%s@%s[%s] %s", p.Shape, p.Centre, p.Offsets, p.Action)
}

// SetAction replaces any action not yet consumed.
func (p *Piece) SetAction(a event.GameAction) {
	p.Action = a
}

// Cells returns the absolute matrix coordinates covered by the piece.
func (p Piece) Cells() [4]Point {
	return cells(p.Centre, p.Offsets)
}

// Project returns the cells the piece would cover after a. It reports false
// for actions that are not a single translation or rotation.
func (p Piece) Project(a event.GameAction) ([4]Point, bool) {
	centre, offsets, ok := p.transform(a)
	if !ok {
		return [4]Point{}, false
	}

	return cells(centre, offsets), true
}

// Apply performs the pending action and clears it. Hard drops are handled by
// the game and are only cleared here.
func (p *Piece) Apply() {
	if centre, offsets, ok := p.transform(p.Action); ok {
		p.Centre = centre
		p.Offsets = offsets
	}

	p.Action = event.ActionNone
}

// Fall lowers the piece by one row without touching the pending action.
func (p *Piece) Fall() {
	p.Centre.Y++
}

func (p Piece) transform(a event.GameAction) (Point, Offsets, bool) {
	switch a {
	case event.ActionMoveLeft:
		return p.Centre.Add(Point{-1, 0}), p.Offsets, true
	case event.ActionMoveRight:
		return p.Centre.Add(Point{1, 0}), p.Offsets, true
	case event.ActionSoftDrop:
		return p.Centre.Add(Point{0, 1}), p.Offsets, true
	case event.ActionRotateCW:
		if p.Shape == ShapeSquare {
			return p.Centre, p.Offsets, true
		}
		return p.Centre, p.Offsets.RotateCW(), true
	case event.ActionRotateCCW:
		if p.Shape == ShapeSquare {
			return p.Centre, p.Offsets, true
		}
		return p.Centre, p.Offsets.RotateCCW(), true
	case event.ActionNone, event.ActionHardDrop:
		return p.Centre, p.Offsets, false
	default:
		return p.Centre, p.Offsets, false
	}
}

func cells(centre Point, offsets Offsets) [4]Point {
	var c [4]Point
	for i, o := range offsets {
		c[i] = centre.Add(o)
	}

	return c
}
