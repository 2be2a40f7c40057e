package mino

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownShape = errors.New("unknown shape")

// Shape identifies a piece layout. ShapeEmpty marks an unoccupied cell and is
// never spawned.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeLine
	ShapeSquare
	ShapeT
	ShapeL
	ShapeMirroredL
	ShapeZ
	ShapeS
)

// PlayableShapes is the number of shapes that can be spawned.
const PlayableShapes = 7

// Offsets are the four cells of a piece relative to its centre.
type Offsets [4]Point

var shapeNames = [...]string{
	ShapeEmpty:     "Empty",
	ShapeLine:      "Line",
	ShapeSquare:    "Square",
	ShapeT:         "T",
	ShapeL:         "L",
	ShapeMirroredL: "MirroredL",
	ShapeZ:         "Z",
	ShapeS:         "S",
}

var shapeOffsets = [...]Offsets{
	ShapeEmpty:     {{0, 0}, {0, 0}, {0, 0}, {0, 0}},
	ShapeLine:      {{-1, 0}, {0, 0}, {1, 0}, {2, 0}},
	ShapeSquare:    {{0, 0}, {1, 0}, {0, -1}, {1, -1}},
	ShapeT:         {{-1, 0}, {0, 0}, {1, 0}, {0, -1}},
	ShapeL:         {{-1, 0}, {0, 0}, {1, 0}, {1, -1}},
	ShapeMirroredL: {{-1, -1}, {-1, 0}, {0, 0}, {1, 0}},
	ShapeZ:         {{-1, 0}, {0, 0}, {0, -1}, {1, -1}},
	ShapeS:         {{-1, -1}, {0, -1}, {0, 0}, {1, 0}},
}

func (s Shape) Valid() bool {
	return s >= ShapeEmpty && int(s) < len(shapeNames)
}

func (s Shape) Playable() bool {
	return s != ShapeEmpty && s.Valid()
}

// Offsets returns the canonical layout of the shape.
func (s Shape) Offsets() Offsets {
	if !s.Valid() {
		return shapeOffsets[ShapeEmpty]
	}

	return shapeOffsets[s]
}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shape(%d)", int(s))
	}

	return shapeNames[s]
}

func (s Shape) Rune() rune {
	switch s {
	case ShapeEmpty:
		return ' '
	case ShapeLine, ShapeSquare, ShapeT, ShapeL, ShapeMirroredL, ShapeZ, ShapeS:
		return '█'
	default:
		return '?'
	}
}

func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}

	return ShapeEmpty, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShape, int(s))
	}

	return []byte(shapeNames[s]), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := ParseShape(string(text))
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// UnmarshalJSON accepts only a shape name. Null and numbers fail instead of
// reading as ShapeEmpty.
func (s *Shape) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || b[0] != '"' {
		return fmt.Errorf("%w: %s", ErrUnknownShape, b)
	}

	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}

	return s.UnmarshalText([]byte(name))
}

func (o Offsets) RotateCW() Offsets {
	var r Offsets
	for i, p := range o {
		r[i] = p.RotateCW()
	}

	return r
}

func (o Offsets) RotateCCW() Offsets {
	var r Offsets
	for i, p := range o {
		r[i] = p.RotateCCW()
	}

	return r
}

func (o Offsets) String() string {
	var b strings.Builder
	for i := range o {
		if i > 0 {
			b.WriteRune(',')
		}
		b.WriteString(o[i].String())
	}

	return b.String()
}
