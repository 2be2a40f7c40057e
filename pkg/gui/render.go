package gui

import (
	"bytes"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/mino"
)

// Each cell is drawn two columns wide to look square.
const cellWidth = 2

var (
	renderHLine    = []byte(string(tcell.RuneHLine))
	renderVLine    = []byte(string(tcell.RuneVLine))
	renderULCorner = []byte(string(tcell.RuneULCorner))
	renderURCorner = []byte(string(tcell.RuneURCorner))
	renderLLCorner = []byte(string(tcell.RuneLLCorner))
	renderLRCorner = []byte(string(tcell.RuneLRCorner))
)

type renderer struct {
	theme  Theme
	blocks map[mino.Shape][]byte
	border []byte
}

func newRenderer(t Theme) *renderer {
	r := &renderer{
		theme:  t,
		blocks: make(map[mino.Shape][]byte),
		border: []byte(fmtHex(t.Border)),
	}

	r.blocks[mino.ShapeEmpty] = bytes.Repeat([]byte(" "), cellWidth)
	for s := mino.ShapeLine; s.Valid(); s++ {
		block := fmtHex(t.ShapeColor(s))
		for i := 0; i < cellWidth; i++ {
			block += string(s.Rune())
		}
		r.blocks[s] = []byte(block + "[-]")
	}

	return r
}

func (r *renderer) block(s mino.Shape) []byte {
	if b, ok := r.blocks[s]; ok {
		return b
	}
	return r.blocks[mino.ShapeEmpty]
}

// renderMatrix draws the settled cells of g with the active piece on top,
// inside a border, top row first.
func (r *renderer) renderMatrix(buf *bytes.Buffer, g *game.Game) {
	buf.Reset()

	p := g.Piece()
	overlay := p.Cells()

	w, h := g.Width(), g.Height()

	buf.Write(r.border)
	buf.Write(renderULCorner)
	for x := 0; x < w*cellWidth; x++ {
		buf.Write(renderHLine)
	}
	buf.Write(renderURCorner)
	buf.WriteString("[-]\n")

	for y := 0; y < h; y++ {
		buf.Write(r.border)
		buf.Write(renderVLine)
		buf.WriteString("[-]")

		for x := 0; x < w; x++ {
			s := g.Block(x, y)
			for _, c := range overlay {
				if c.X == x && c.Y == y {
					s = p.Shape
					break
				}
			}

			buf.Write(r.block(s))
		}

		buf.Write(r.border)
		buf.Write(renderVLine)
		buf.WriteString("[-]\n")
	}

	buf.Write(r.border)
	buf.Write(renderLLCorner)
	for x := 0; x < w*cellWidth; x++ {
		buf.Write(renderHLine)
	}
	buf.Write(renderLRCorner)
	buf.WriteString("[-]")
}

// renderSide draws the score panel.
func (r *renderer) renderSide(buf *bytes.Buffer, g *game.Game, slot string, paused bool) {
	buf.Reset()

	label := fmtHex(r.theme.Label)
	score := fmtHex(r.theme.Score)

	fmt.Fprintf(buf, "\n %sLines[-]\n\n   %s%d[-]\n\n %sSlot[-]\n\n   %s\n\n", label, score, g.Score(), label, slot)

	switch {
	case g.Ended():
		fmt.Fprintf(buf, " %sGAME OVER[-]\n\n Esc: menu", fmtHex(r.theme.Msg))
	case paused:
		fmt.Fprintf(buf, " %sPAUSED[-]", fmtHex(r.theme.Msg))
	}
}

// renderEvents draws the most recent n events, oldest first.
func (r *renderer) renderEvents(buf *bytes.Buffer, events []event.Event, n int) {
	buf.Reset()

	if len(events) > n {
		events = events[len(events)-n:]
	}

	t := fmtHex(r.theme.Time)
	for i, e := range events {
		if i > 0 {
			buf.WriteRune('\n')
		}
		fmt.Fprintf(buf, "%s%s[-] %s", t, e.Time.Format(event.TimeFormat), e.Message)
	}
}
