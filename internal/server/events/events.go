package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openmined/syncfolders/internal/syncfolder"
)

const subscriberBuffer = 256

// Event is a notification published on the bus
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	User    string    `json:"user,omitempty"`
	Payload any       `json:"data"`
	Time    time.Time `json:"time"`
}

// Filter selects the events a subscription receives
type Filter func(*Event) bool

// ForUserFilter selects events addressed to the user and untargeted events
func ForUserFilter(user string) Filter {
	return func(ev *Event) bool {
		return ev.User == "" || ev.User == user
	}
}

type Subscription struct {
	ID     string
	C      <-chan *Event
	ch     chan *Event
	filter Filter
}

// Bus fans events out to subscribers. Slow subscribers drop events rather
// than block publishers.
type Bus struct {
	subs   map[string]*Subscription
	mu     sync.RWMutex
	closed bool
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]*Subscription),
	}
}

// Notify publishes an untargeted event
func (b *Bus) Notify(event string, payload any) {
	b.Publish(&Event{Type: event, Payload: payload})
}

// Publish delivers ev to every matching subscriber
func (b *Bus) Publish(ev *Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("events subscriber buffer full", "subId", sub.ID, "event", ev.Type, "user", ev.User)
		}
	}
}

// ForUser returns a notifier that tags every event with user
func (b *Bus) ForUser(user string) syncfolder.Notifier {
	return &userNotifier{bus: b, user: user}
}

func (b *Bus) Subscribe(filter Filter) *Subscription {
	ch := make(chan *Event, subscriberBuffer)
	sub := &Subscription{
		ID:     uuid.NewString(),
		C:      ch,
		ch:     ch,
		filter: filter,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.ID] = sub
	slog.Debug("events subscribed", "subId", sub.ID, "active", len(b.subs))
	return sub
}

// Unsubscribe removes the subscription and closes its channel
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.ID]; !ok {
		return
	}
	delete(b.subs, sub.ID)
	close(sub.ch)
	slog.Debug("events unsubscribed", "subId", sub.ID, "active", len(b.subs))
}

// Close closes every subscription. Publishing after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
	slog.Info("events bus closed")
}

type userNotifier struct {
	bus  *Bus
	user string
}

func (n *userNotifier) Notify(event string, payload any) {
	n.bus.Publish(&Event{Type: event, User: n.user, Payload: payload})
}
