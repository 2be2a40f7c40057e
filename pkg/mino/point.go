package mino

import (
	"strconv"
	"strings"
)

// Point is either an absolute matrix coordinate or an offset from a piece
// centre. Y grows downwards.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) RotateCW() Point   { return Point{-p.Y, p.X} }
func (p Point) RotateCCW() Point  { return Point{p.Y, -p.X} }

func (p Point) String() string {
	var b strings.Builder
	b.WriteRune('(')
	b.WriteString(strconv.Itoa(p.X))
	b.WriteRune(',')
	b.WriteString(strconv.Itoa(p.Y))
	b.WriteRune(')')

	return b.String()
}
