package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/qnkhuat/blockterm/pkg/game"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// DefaultScoreLimit is the number of scores TopScores returns when asked for
// a non-positive limit.
const DefaultScoreLimit = 20

var ErrInvalidSlot = errors.New("invalid save slot")

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]{0,63}$`)

// Score is one finished game on the leaderboard.
type Score struct {
	Slot  string    `json:"slot"`
	Lines int       `json:"lines"`
	At    time.Time `json:"at"`
}

// Store persists game states by slot and keeps finished scores.
//
// Load reports false with a nil error when the slot holds no saved state.
// TopScores returns the best scores first, at most limit of them, or
// DefaultScoreLimit when limit is not positive.
type Store interface {
	Load(ctx context.Context, slot string) (*game.State, bool, error)
	Save(ctx context.Context, slot string, s *game.State) error
	RecordScore(ctx context.Context, score Score) error
	TopScores(ctx context.Context, limit int) ([]Score, error)
	Close() error
}

// Open returns the store for driver. For the file driver dsn is a directory,
// for sqlite it is a database path.
func Open(driver string, dsn string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(dsn), nil
	case DriverSQLite:
		return OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func ValidSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}

	return nil
}
