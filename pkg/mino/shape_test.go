package mino

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShape(t *testing.T) {
	for s := ShapeEmpty; s <= ShapeS; s++ {
		parsed, err := ParseShape(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseShape("Pentomino")
	assert.True(t, errors.Is(err, ErrUnknownShape))
}

func TestShapeJSON(t *testing.T) {
	var column []Shape
	err := json.Unmarshal([]byte(`["Empty","MirroredL","T"]`), &column)
	require.NoError(t, err)
	assert.Equal(t, []Shape{ShapeEmpty, ShapeMirroredL, ShapeT}, column)

	err = json.Unmarshal([]byte(`["Empty","Background"]`), &column)
	assert.Error(t, err)

	_, err = json.Marshal(Shape(42))
	assert.Error(t, err)

	for _, raw := range []string{`[null]`, `[0]`, `[true]`} {
		column = nil
		err = json.Unmarshal([]byte(raw), &column)
		assert.ErrorIs(t, err, ErrUnknownShape, raw)
	}
}

func TestShapeOffsets(t *testing.T) {
	for _, s := range allPlayable {
		seen := make(map[Point]bool)
		for _, p := range s.Offsets() {
			assert.False(t, seen[p], "duplicate offset %s in %s", p, s)
			seen[p] = true
		}
	}

	assert.Equal(t, ShapeEmpty.Offsets(), Shape(99).Offsets())
	assert.False(t, ShapeEmpty.Playable())
	assert.True(t, ShapeS.Playable())
}

func TestRandomSource(t *testing.T) {
	a := NewRandomSource(7)
	b := NewRandomSource(7)

	counts := make(map[Shape]int)
	for i := 0; i < 7000; i++ {
		s := a.Next()
		require.True(t, s.Playable(), "spawned %s", s)
		assert.Equal(t, s, b.Next(), "same seed must give the same sequence")
		counts[s]++
	}

	assert.Len(t, counts, PlayableShapes)
}

func TestSequenceSource(t *testing.T) {
	src := NewSequenceSource(ShapeT, ShapeLine)

	assert.Equal(t, ShapeT, src.Next())
	assert.Equal(t, ShapeLine, src.Next())
	assert.Equal(t, ShapeT, src.Next())
}
