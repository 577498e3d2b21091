// Package diagnostics is the outbound channel for human-readable failure reports.
package diagnostics

import (
	"fmt"
	"log"
	"sync"
	"time"
)

type Kind string

const (
	KindInput   Kind = "input"
	KindCompile Kind = "compile"
	KindDevice  Kind = "device"
	KindControl Kind = "control"
)

type Event struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Publisher accepts diagnostics. Publish must not block the caller.
type Publisher interface {
	Publish(kind Kind, message string)
}

// Publishf formats and publishes a diagnostic.
func Publishf(p Publisher, kind Kind, format string, args ...any) {
	p.Publish(kind, fmt.Sprintf(format, args...))
}

// Hub logs every event and fans it out to subscribers. A subscriber that
// does not keep up loses events rather than stalling the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *log.Logger
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{}), logger: log.Default()}
}

func (h *Hub) Publish(kind Kind, message string) {
	ev := Event{Kind: kind, Message: message, Time: time.Now()}
	h.logger.Printf("diagnostic [%s]: %s", kind, message)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a buffered event channel and a function that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
