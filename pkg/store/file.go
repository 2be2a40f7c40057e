package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/rs/zerolog/log"
)

const scoresFile = ".scores.json"

// FileStore keeps one JSON document per slot in a directory, plus a
// hidden scores file holding the best score of each slot.
type FileStore struct {
	Dir string

	sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(slot string) string {
	return filepath.Join(f.Dir, slot+".json")
}

func (f *FileStore) Load(ctx context.Context, slot string) (*game.State, bool, error) {
	if err := ValidSlot(slot); err != nil {
		return nil, false, err
	}

	f.Lock()
	defer f.Unlock()

	b, err := os.ReadFile(f.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return nil, false, nil
	}

	s, err := game.DecodeState(bytes.NewReader(b))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode slot %s: %w", slot, err)
	}

	return s, true, nil
}

func (f *FileStore) Save(ctx context.Context, slot string, s *game.State) error {
	if err := ValidSlot(slot); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}

	f.Lock()
	defer f.Unlock()

	if err := f.writeFile(f.path(slot), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}

	log.Debug().Str("slot", slot).Str("dir", f.Dir).Msg("saved game")
	return nil
}

// writeFile replaces name atomically so a crash never leaves half a save.
func (f *FileStore) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), name)
}

func (f *FileStore) readScores() (map[string]Score, error) {
	scores := make(map[string]Score)

	b, err := os.ReadFile(filepath.Join(f.Dir, scoresFile))
	if errors.Is(err, fs.ErrNotExist) {
		return scores, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read scores: %w", err)
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(b, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}

	return scores, nil
}

// RecordScore keeps score when it beats the slot's previous best.
func (f *FileStore) RecordScore(ctx context.Context, score Score) error {
	if err := ValidSlot(score.Slot); err != nil {
		return err
	}

	f.Lock()
	defer f.Unlock()

	scores, err := f.readScores()
	if err != nil {
		return err
	}

	if best, ok := scores[score.Slot]; ok && best.Lines >= score.Lines {
		return nil
	}
	scores[score.Slot] = score

	b, err := json.MarshalIndent(scores, "", "    ")
	if err != nil {
		return err
	}

	if err := f.writeFile(filepath.Join(f.Dir, scoresFile), b); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}

	return nil
}

func (f *FileStore) TopScores(ctx context.Context, limit int) ([]Score, error) {
	f.Lock()
	scores, err := f.readScores()
	f.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		out = append(out, s)
	}
	sortScores(out)

	if limit <= 0 {
		limit = DefaultScoreLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *FileStore) Close() error {
	return nil
}

func sortScores(scores []Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Lines != scores[j].Lines {
			return scores[i].Lines > scores[j].Lines
		}
		if !scores[i].At.Equal(scores[j].At) {
			return scores[i].At.Before(scores[j].At)
		}
		return scores[i].Slot < scores[j].Slot
	})
}
