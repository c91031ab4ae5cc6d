package synclog

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	MaxLogSize        = 10 * 1024 * 1024 // 10MB
	MaxLogFiles       = 5
	LogFilePermission = 0600
	LogDirPermission  = 0700

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Entry is one finished sync session
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	User          string    `json:"user"`
	AssetstoreID  string    `json:"assetstoreId"`
	DestinationID string    `json:"destinationId"`
	ImportPath    string    `json:"importPath"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	HostFiles     int       `json:"hostFiles"`
	Moved         int       `json:"moved"`
	Created       int       `json:"created"`
	Deleted       int       `json:"deleted"`
	Unchanged     int       `json:"unchanged"`
	Pruned        int       `json:"pruned"`
	DurationMs    int64     `json:"durationMs"`
}

// SyncLogger keeps a rotating JSON lines history of sync sessions per user
// under baseDir/<user>/
type SyncLogger struct {
	baseDir string
	writers map[string]*userLogWriter
	mu      sync.Mutex
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) (*SyncLogger, error) {
	if err := os.MkdirAll(baseDir, LogDirPermission); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &SyncLogger{
		baseDir: baseDir,
		writers: make(map[string]*userLogWriter),
		logger:  logger.With("component", "sync_logger"),
	}, nil
}

// Record appends entry to its user's history. Failures are logged, never
// returned, so history never fails a sync.
func (l *SyncLogger) Record(entry *Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	user := entry.User
	if user == "" {
		user = "anonymous"
	}

	if err := l.write(user, entry); err != nil {
		l.logger.Error("failed to write sync log", "user", user, "error", err, "destination", entry.DestinationID)
	}
}

func (l *SyncLogger) write(user string, entry *Entry) error {
	l.mu.Lock()
	w, ok := l.writers[user]
	if !ok {
		var err error
		w, err = newUserLogWriter(filepath.Join(l.baseDir, sanitizeUsername(user)))
		if err != nil {
			l.mu.Unlock()
			return err
		}
		l.writers[user] = w
	}
	l.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return w.write(append(data, '\n'))
}

// History returns up to limit of the user's most recent sessions, oldest
// first
func (l *SyncLogger) History(user string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		return []*Entry{}, nil
	}

	files, err := logFiles(filepath.Join(l.baseDir, sanitizeUsername(user)))
	if err != nil {
		return nil, err
	}

	entries := []*Entry{}
	// newest file first
	for i := len(files) - 1; i >= 0 && len(entries) < limit; i-- {
		fileEntries, err := readLogFile(files[i])
		if err != nil {
			l.logger.Warn("failed to read sync log", "file", files[i], "error", err)
			continue
		}
		entries = append(fileEntries, entries...)
	}

	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (l *SyncLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for user, w := range l.writers {
		w.close()
		delete(l.writers, user)
	}
	return nil
}

// logFiles lists the .log files of dir, oldest first
func logFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range dirEntries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".log") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	// names embed a sortable timestamp
	sort.Strings(files)
	return files, nil
}

func readLogFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			// a torn line from a crash
			continue
		}
		entries = append(entries, &e)
	}
	return entries, scanner.Err()
}

// sanitizeUsername converts a username to a filesystem-safe string
func sanitizeUsername(user string) string {
	result := make([]byte, 0, len(user))
	for i := 0; i < len(user); i++ {
		c := user[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '@' || c == '.' || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}
