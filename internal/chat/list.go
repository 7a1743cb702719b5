package chat

import (
	"sync"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

type EventKind string

const (
	Appended EventKind = "appended"
	Updated  EventKind = "updated"
)

type Event struct {
	Kind    EventKind     `json:"kind"`
	Message model.Message `json:"message"`
}

// List is the session's ordered message list. Records are only appended or
// have their status replaced; ids are unique.
type List struct {
	mu    sync.RWMutex
	items []model.Message
	index map[string]int

	subMu  sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewList() *List {
	return &List{
		index: make(map[string]int),
		subs:  make(map[int]func(Event)),
	}
}

// Append adds m at the end. It returns false and leaves the list untouched
// when a record with the same id already exists.
func (l *List) Append(m model.Message) bool {
	l.mu.Lock()
	if _, ok := l.index[m.ID]; ok {
		l.mu.Unlock()
		return false
	}
	l.index[m.ID] = len(l.items)
	l.items = append(l.items, m)
	l.mu.Unlock()

	l.publish(Event{Kind: Appended, Message: m})
	return true
}

// SetStatus replaces the status of the record with the given id.
func (l *List) SetStatus(id string, status model.Status) (model.Message, bool) {
	l.mu.Lock()
	i, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return model.Message{}, false
	}
	l.items[i].Status = status
	m := l.items[i]
	l.mu.Unlock()

	l.publish(Event{Kind: Updated, Message: m})
	return m, true
}

func (l *List) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.index[id]
	return ok
}

func (l *List) Get(id string) (model.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[id]
	if !ok {
		return model.Message{}, false
	}
	return l.items[i], true
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Snapshot returns a copy safe to hand out.
func (l *List) Snapshot() []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Message, len(l.items))
	copy(out, l.items)
	return out
}

// Subscribe registers fn for every change. Callbacks run synchronously on the
// mutating goroutine, after the list lock is released.
func (l *List) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.subMu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.subMu.Unlock()

	return func() {
		l.subMu.Lock()
		delete(l.subs, id)
		l.subMu.Unlock()
	}
}

func (l *List) publish(ev Event) {
	l.subMu.RLock()
	fns := make([]func(Event), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
