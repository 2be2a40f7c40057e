package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/qnkhuat/blockterm/pkg/event"
	"github.com/qnkhuat/blockterm/pkg/mino"
)

var ErrInvalidState = errors.New("invalid game state")

// PieceState is the persisted form of the active piece.
type PieceState struct {
	Shape          mino.Shape       `json:"shape"`
	Centre         mino.Point       `json:"centre"`
	Offsets        []mino.Point     `json:"offsets"`
	PendingCommand event.GameAction `json:"pendingCommand"`
}

// State is the persisted form of a game. Board is column-major, width outer.
type State struct {
	Ended         bool           `json:"ended"`
	Score         int            `json:"score"`
	ActivePiece   PieceState     `json:"activePiece"`
	Board         [][]mino.Shape `json:"board"`
	FallCountdown int            `json:"fallCountdown"`
}

// State captures the game between ticks.
func (g *Game) State() *State {
	m := g.matrix.Clone()

	return &State{
		Ended: g.ended,
		Score: g.score,
		ActivePiece: PieceState{
			Shape:          g.piece.Shape,
			Centre:         g.piece.Centre,
			Offsets:        append([]mino.Point(nil), g.piece.Offsets[:]...),
			PendingCommand: g.piece.Action,
		},
		Board:         m.M,
		FallCountdown: g.fallCountdown,
	}
}

// Restore replaces the game with s. The game is left untouched when s does
// not fit it.
func (g *Game) Restore(s *State) error {
	if err := s.validate(g.matrix.W, g.matrix.H, g.fallPeriod); err != nil {
		return err
	}

	m := mino.NewMatrix(g.matrix.W, g.matrix.H)
	for x := range s.Board {
		copy(m.M[x], s.Board[x])
	}

	var offsets mino.Offsets
	copy(offsets[:], s.ActivePiece.Offsets)

	g.matrix = m
	g.piece = mino.Piece{
		Shape:   s.ActivePiece.Shape,
		Centre:  s.ActivePiece.Centre,
		Offsets: offsets,
		Action:  s.ActivePiece.PendingCommand,
	}
	g.score = s.Score
	g.ended = s.Ended
	g.fallCountdown = s.FallCountdown

	return nil
}

// NewGameFromState builds a game and restores s into it.
func NewGameFromState(s *State, options ...Option) (*Game, error) {
	g := NewGame(options...)
	if err := g.Restore(s); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *State) validate(w int, h int, fallPeriod int) error {
	if len(s.Board) != w {
		return fmt.Errorf("%w: board has %d columns, want %d", ErrInvalidState, len(s.Board), w)
	}
	for x, column := range s.Board {
		if len(column) != h {
			return fmt.Errorf("%w: column %d has %d rows, want %d", ErrInvalidState, x, len(column), h)
		}
		for y, b := range column {
			if !b.Valid() {
				return fmt.Errorf("%w: cell %d,%d holds %s", ErrInvalidState, x, y, b)
			}
		}
	}

	p := s.ActivePiece
	if !p.Shape.Playable() {
		return fmt.Errorf("%w: active piece shape %s", ErrInvalidState, p.Shape)
	}
	if !p.PendingCommand.Valid() {
		return fmt.Errorf("%w: pending command %s", ErrInvalidState, p.PendingCommand)
	}
	if len(p.Offsets) != 4 {
		return fmt.Errorf("%w: active piece has %d offsets, want 4", ErrInvalidState, len(p.Offsets))
	}
	for _, o := range p.Offsets {
		c := p.Centre.Add(o)
		if c.X < 0 || c.X >= w || c.Y < 0 || c.Y >= h {
			return fmt.Errorf("%w: active piece cell %s outside the board", ErrInvalidState, c)
		}
	}

	if s.Score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidState, s.Score)
	}
	if s.FallCountdown < 0 || s.FallCountdown > fallPeriod {
		return fmt.Errorf("%w: fall countdown %d outside [0,%d]", ErrInvalidState, s.FallCountdown, fallPeriod)
	}

	return nil
}

func (s *State) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}

	return nil
}

// stateRecord is State as read from JSON. Every field is required, so
// pointers tell a missing or null value from a zero one.
type stateRecord struct {
	Ended         *bool          `json:"ended"`
	Score         *int           `json:"score"`
	ActivePiece   *pieceRecord   `json:"activePiece"`
	Board         [][]mino.Shape `json:"board"`
	FallCountdown *int           `json:"fallCountdown"`
}

type pieceRecord struct {
	Shape          *mino.Shape       `json:"shape"`
	Centre         *mino.Point       `json:"centre"`
	Offsets        []mino.Point      `json:"offsets"`
	PendingCommand *event.GameAction `json:"pendingCommand"`
}

func (r *stateRecord) state() (*State, error) {
	var missing string
	switch {
	case r.Ended == nil:
		missing = "ended"
	case r.Score == nil:
		missing = "score"
	case r.ActivePiece == nil:
		missing = "activePiece"
	case r.Board == nil:
		missing = "board"
	case r.FallCountdown == nil:
		missing = "fallCountdown"
	case r.ActivePiece.Shape == nil:
		missing = "activePiece.shape"
	case r.ActivePiece.Centre == nil:
		missing = "activePiece.centre"
	case r.ActivePiece.Offsets == nil:
		missing = "activePiece.offsets"
	case r.ActivePiece.PendingCommand == nil:
		missing = "activePiece.pendingCommand"
	}
	if missing != "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidState, missing)
	}

	return &State{
		Ended: *r.Ended,
		Score: *r.Score,
		ActivePiece: PieceState{
			Shape:          *r.ActivePiece.Shape,
			Centre:         *r.ActivePiece.Centre,
			Offsets:        r.ActivePiece.Offsets,
			PendingCommand: *r.ActivePiece.PendingCommand,
		},
		Board:         r.Board,
		FallCountdown: *r.FallCountdown,
	}, nil
}

// DecodeState reads a single state. Unknown or null shape and command names
// fail, as do missing fields and anything after the state.
func DecodeState(r io.Reader) (*State, error) {
	var rec stateRecord

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after state", ErrInvalidState)
	}

	return rec.state()
}
