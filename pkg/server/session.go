package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/qnkhuat/blockterm/pkg/store"
)

const guestSlot = "guest"

// Session is one connected SSH player.
type Session struct {
	ID      string    `json:"id"`
	User    string    `json:"user"`
	Slot    string    `json:"slot"`
	Remote  string    `json:"remote"`
	Started time.Time `json:"started"`
}

// Registry tracks the sessions currently playing.
type Registry struct {
	sessions map[string]Session
	now      func() time.Time

	sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session), now: time.Now}
}

// Add registers a session under a fresh pet name.
func (r *Registry) Add(user string, remote string) Session {
	r.Lock()
	defer r.Unlock()

	id := petname.Generate(2, "-")
	for i := 2; ; i++ {
		if _, ok := r.sessions[id]; !ok {
			break
		}
		id = fmt.Sprintf("%s-%d", petname.Generate(2, "-"), i)
	}

	s := Session{ID: id, User: user, Slot: SlotFor(user), Remote: remote, Started: r.now()}
	r.sessions[id] = s

	return s
}

func (r *Registry) Remove(id string) {
	r.Lock()
	defer r.Unlock()

	delete(r.sessions, id)
}

// List returns the sessions, oldest first.
func (r *Registry) List() []Session {
	r.Lock()
	defer r.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Started.Equal(out[j].Started) {
			return out[i].Started.Before(out[j].Started)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()

	return len(r.sessions)
}

// SlotFor turns an SSH user name into a save slot.
func SlotFor(user string) string {
	slot := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, user)

	if len(slot) > 64 {
		slot = slot[:64]
	}
	if store.ValidSlot(slot) != nil {
		return guestSlot
	}

	return slot
}
