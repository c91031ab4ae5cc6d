package progress

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/openmined/syncfolders/internal/server/events"
)

const (
	EventProgress = "progress"

	StateActive  = "active"
	StateSuccess = "success"
	StateError   = "error"

	DefaultTTL   = 15 * time.Minute
	maxRecords   = 1024
	SyncingTitle = "Syncing Folder"
)

// Record is the last known state of a long running operation
type Record struct {
	ID      string    `json:"id"`
	User    string    `json:"user"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	State   string    `json:"state"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type Tracker struct {
	records *expirable.LRU[string, *Record]
	bus     *events.Bus
	mu      sync.Mutex
}

// NewTracker keeps records for ttl after their last update. bus may be nil.
func NewTracker(bus *events.Bus, ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		records: expirable.NewLRU[string, *Record](maxRecords, nil, ttl),
		bus:     bus,
	}
}

// Start opens a new active record owned by user
func (t *Tracker) Start(user, title string) *Context {
	now := time.Now().UTC()
	rec := &Record{
		ID:      uuid.NewString(),
		User:    user,
		Title:   title,
		State:   StateActive,
		Created: now,
		Updated: now,
	}
	t.store(rec)
	return &Context{tracker: t, id: rec.ID}
}

// Get returns a copy of the record
func (t *Tracker) Get(id string) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records.Get(id)
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (t *Tracker) update(id string, fn func(*Record)) {
	t.mu.Lock()
	rec, ok := t.records.Get(id)
	if !ok {
		t.mu.Unlock()
		slog.Debug("progress record expired", "id", id)
		return
	}
	cp := *rec
	fn(&cp)
	cp.Updated = time.Now().UTC()
	t.mu.Unlock()

	t.store(&cp)
}

func (t *Tracker) store(rec *Record) {
	t.mu.Lock()
	// Add refreshes the expiry
	t.records.Add(rec.ID, rec)
	t.mu.Unlock()

	if t.bus != nil {
		cp := *rec
		t.bus.Publish(&events.Event{Type: EventProgress, User: rec.User, Payload: &cp})
	}
}

// Context reports progress for one record
type Context struct {
	tracker *Tracker
	id      string
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) Update(message string) {
	c.tracker.update(c.id, func(r *Record) {
		r.Message = message
	})
}

// Done closes the record as a success, or as an error when err is set
func (c *Context) Done(err error) {
	c.tracker.update(c.id, func(r *Record) {
		if err != nil {
			r.State = StateError
			r.Message = err.Error()
			return
		}
		r.State = StateSuccess
	})
}
