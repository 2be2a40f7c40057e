package gui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/blockterm/pkg/mino"
)

// Terminal safe color palette is available here
// https://upload.wikimedia.org/wikipedia/commons/1/15/Xterm_256color_chart.svg

// Theme is used for coloring the UI
type Theme struct {
	Name      string
	Line      tcell.Color
	Square    tcell.Color
	T         tcell.Color
	L         tcell.Color
	MirroredL tcell.Color
	Z         tcell.Color
	S         tcell.Color
	Border    tcell.Color
	Label     tcell.Color
	Score     tcell.Color
	Msg       tcell.Color
	Time      tcell.Color
}

// fmtHex returns the tview color tag for c. ColorDefault resets to the
// terminal color instead of being read as black.
func fmtHex(c tcell.Color) string {
	if c == tcell.ColorDefault {
		return "[-]"
	}
	return fmt.Sprintf("[#%06x]", c.Hex())
}

// ShapeColor returns the color blocks of s are drawn in.
func (t Theme) ShapeColor(s mino.Shape) tcell.Color {
	switch s {
	case mino.ShapeLine:
		return t.Line
	case mino.ShapeSquare:
		return t.Square
	case mino.ShapeT:
		return t.T
	case mino.ShapeL:
		return t.L
	case mino.ShapeMirroredL:
		return t.MirroredL
	case mino.ShapeZ:
		return t.Z
	case mino.ShapeS:
		return t.S
	default:
		return tcell.ColorDefault
	}
}

// ThemeBasic is the default theme
var ThemeBasic = Theme{
	Name:      "basic",
	Line:      tcell.NewHexColor(0x00eeee),
	Square:    tcell.NewHexColor(0xdddd00),
	T:         tcell.NewHexColor(0xc000cc),
	L:         tcell.NewHexColor(0xff7308),
	MirroredL: tcell.NewHexColor(0x2864ff),
	Z:         tcell.NewHexColor(0xee0000),
	S:         tcell.NewHexColor(0x00e900),
	Border:    tcell.Color247,
	Label:     tcell.Color247,
	Score:     tcell.ColorDefault,
	Msg:       tcell.Color160,
	Time:      tcell.Color240,
}
