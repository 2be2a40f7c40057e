package mino

import (
	"math/rand"
	"sync"
)

// ShapeSource picks the shape of each newly spawned piece.
type ShapeSource interface {
	Next() Shape
}

// RandomSource picks uniformly among the playable shapes.
type RandomSource struct {
	randomizer *rand.Rand

	*sync.Mutex
}

func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{randomizer: rand.New(rand.NewSource(seed)), Mutex: new(sync.Mutex)}
}

func (s *RandomSource) Next() Shape {
	s.Lock()
	defer s.Unlock()

	return Shape(s.randomizer.Intn(PlayableShapes) + 1)
}

// SequenceSource repeats a fixed list of shapes.
type SequenceSource struct {
	Shapes []Shape

	i int
}

func NewSequenceSource(shapes ...Shape) *SequenceSource {
	return &SequenceSource{Shapes: shapes}
}

func (s *SequenceSource) Next() Shape {
	if len(s.Shapes) == 0 {
		return ShapeLine
	}

	shape := s.Shapes[s.i]
	s.i = (s.i + 1) % len(s.Shapes)

	return shape
}
