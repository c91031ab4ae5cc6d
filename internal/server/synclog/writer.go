package synclog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type userLogWriter struct {
	dir         string
	file        *os.File
	currentFile string
	currentSize int64
	maxSize     int64
	mu          sync.Mutex
}

func newUserLogWriter(dir string) (*userLogWriter, error) {
	if err := os.MkdirAll(dir, LogDirPermission); err != nil {
		return nil, fmt.Errorf("failed to create user log directory: %w", err)
	}

	w := &userLogWriter{dir: dir, maxSize: MaxLogSize}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// open continues the newest log file, or starts one
func (w *userLogWriter) open() error {
	files, err := logFiles(w.dir)
	if err != nil {
		return err
	}

	path := filepath.Join(w.dir, fmt.Sprintf("sync_%s.log", time.Now().UTC().Format("20060102_150405.000000")))
	if len(files) > 0 {
		path = files[len(files)-1]
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, LogFilePermission)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	w.file = file
	w.currentFile = path
	w.currentSize = stat.Size()
	return nil
}

func (w *userLogWriter) write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("log writer closed")
	}

	if w.currentSize > 0 && w.currentSize+int64(len(data)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log: %w", err)
		}
	}

	n, err := w.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}
	w.currentSize += int64(n)
	return nil
}

// rotate starts a new file and drops the oldest beyond MaxLogFiles
func (w *userLogWriter) rotate() error {
	w.file.Close()

	path := filepath.Join(w.dir, fmt.Sprintf("sync_%s.log", time.Now().UTC().Format("20060102_150405.000000")))
	if path == w.currentFile {
		// same microsecond, keep appending
		path = w.currentFile + ".1.log"
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, LogFilePermission)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = file
	w.currentFile = path
	w.currentSize = 0

	return w.cleanOldLogs()
}

func (w *userLogWriter) cleanOldLogs() error {
	files, err := logFiles(w.dir)
	if err != nil {
		return err
	}
	if len(files) <= MaxLogFiles {
		return nil
	}

	for _, f := range files[:len(files)-MaxLogFiles] {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove old log file: %w", err)
		}
	}
	return nil
}

func (w *userLogWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
}
