package mino

import (
	"strings"
)

const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// Matrix is the grid of settled cells. M is column-major: M[x][y], with row 0
// at the top.
type Matrix struct {
	W int
	H int

	M [][]Shape
}

func NewMatrix(w int, h int) *Matrix {
	m := &Matrix{W: w, H: h, M: make([][]Shape, w)}
	for x := range m.M {
		m.M[x] = make([]Shape, h)
	}

	return m
}

func (m *Matrix) InBounds(p Point) bool {
	return p.X >= 0 && p.X < m.W && p.Y >= 0 && p.Y < m.H
}

// Block returns the shape settled at x,y. Cells outside the matrix read as
// empty.
func (m *Matrix) Block(x int, y int) Shape {
	if !m.InBounds(Point{x, y}) {
		return ShapeEmpty
	}

	return m.M[x][y]
}

func (m *Matrix) Empty(p Point) bool {
	return m.InBounds(p) && m.M[p.X][p.Y] == ShapeEmpty
}

// CanAdd reports whether every cell lies inside the matrix and is empty.
func (m *Matrix) CanAdd(cells [4]Point) bool {
	for _, p := range cells {
		if !m.Empty(p) {
			return false
		}
	}

	return true
}

// Add writes s into every cell that lies inside the matrix and returns the
// number of cells written.
func (m *Matrix) Add(cells [4]Point, s Shape) int {
	added := 0
	for _, p := range cells {
		if !m.InBounds(p) {
			continue
		}

		m.M[p.X][p.Y] = s
		added++
	}

	return added
}

// SetBlock fills a single empty cell.
func (m *Matrix) SetBlock(x int, y int, s Shape) bool {
	if !m.Empty(Point{x, y}) {
		return false
	}

	m.M[x][y] = s
	return true
}

func (m *Matrix) LineFilled(y int) bool {
	for x := 0; x < m.W; x++ {
		if m.M[x][y] == ShapeEmpty {
			return false
		}
	}

	return true
}

// ClearFilled removes full rows bottom-up, shifting everything above down. A
// row is checked again after a shift since new content moved into it.
func (m *Matrix) ClearFilled() int {
	cleared := 0

	for y := m.H - 1; y >= 0; y-- {
		if !m.LineFilled(y) {
			continue
		}

		m.clearLine(y)
		cleared++
		y++
	}

	return cleared
}

func (m *Matrix) clearLine(y int) {
	for x := 0; x < m.W; x++ {
		column := m.M[x]
		for my := y; my > 0; my-- {
			column[my] = column[my-1]
		}
		column[0] = ShapeEmpty
	}
}

func (m *Matrix) Clear() {
	for x := range m.M {
		for y := range m.M[x] {
			m.M[x][y] = ShapeEmpty
		}
	}
}

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.W, m.H)
	for x := range m.M {
		copy(c.M[x], m.M[x])
	}

	return c
}

// Render draws the matrix top row first, overlaying p when it is not nil.
func (m *Matrix) Render(p *Piece) string {
	var overlay map[Point]bool
	if p != nil {
		overlay = make(map[Point]bool, 4)
		for _, c := range p.Cells() {
			overlay[c] = true
		}
	}

	var b strings.Builder
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if overlay[Point{x, y}] {
				b.WriteRune(p.Shape.Rune())
				continue
			}

			b.WriteRune(m.M[x][y].Rune())
		}

		if y < m.H-1 {
			b.WriteRune('\n')
		}
	}

	return b.String()
}
