package event

import (
	"fmt"
	"sync"
	"time"
)

const TimeFormat = "15:04:05"

type Event struct {
	Time    time.Time
	Message string
}

func (e Event) String() string {
	return e.Time.Format(TimeFormat) + " " + e.Message
}

// Log records what happened during a game, oldest first.
type Log struct {
	events []Event
	now    func() time.Time

	sync.Mutex
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

func (l *Log) Logf(format string, a ...interface{}) {
	l.Lock()
	defer l.Unlock()

	l.events = append(l.events, Event{Time: l.now(), Message: fmt.Sprintf(format, a...)})
}

// Events returns a copy of the recorded events.
func (l *Log) Events() []Event {
	l.Lock()
	defer l.Unlock()

	events := make([]Event, len(l.events))
	copy(events, l.events)

	return events
}

func (l *Log) Len() int {
	l.Lock()
	defer l.Unlock()

	return len(l.events)
}

func (l *Log) Clear() {
	l.Lock()
	defer l.Unlock()

	l.events = nil
}
