package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 100 * time.Millisecond

var (
	ErrEmptyKey = errors.New("empty lock key")
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// Locker serializes work per key, within the process and across processes
// sharing the same lock directory.
type Locker struct {
	dir   string
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func New(dir string) (*Locker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}
	return &Locker{
		dir:   dir,
		slots: make(map[string]chan struct{}),
	}, nil
}

func (l *Locker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// Lock blocks until key is held or ctx is done. The returned func releases it.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s := l.slot(key)
	select {
	case s <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	fl := flock.New(l.Path(key))
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil || !locked {
		<-s
		if err == nil {
			err = fmt.Errorf("lock %s not acquired", key)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	slog.Debug("lock acquired", "key", key)

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := fl.Unlock(); err != nil {
				slog.Warn("lock release", "key", key, "error", err)
			}
			<-s
			slog.Debug("lock released", "key", key)
		})
	}, nil
}

// Path is the lock file used for key
func (l *Locker) Path(key string) string {
	return filepath.Join(l.dir, unsafeChars.ReplaceAllString(key, "_")+".lock")
}
