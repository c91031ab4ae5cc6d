package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/openmined/syncfolders/internal/db"
	"github.com/openmined/syncfolders/internal/syncfolder"
	"gopkg.in/yaml.v3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated TEXT NOT NULL
);
`

// Validator checks a value written to a setting and returns it normalized
type Validator func(value any) (any, error)

type definition struct {
	defaultValue any
	validate     Validator
}

// SettingsService persists system settings. Only registered keys can be
// read or written and unset keys resolve to their default.
type SettingsService struct {
	db   *sqlx.DB
	mu   sync.RWMutex
	defs map[string]*definition
}

func NewSettingsService(sqlDB *sqlx.DB) (*SettingsService, error) {
	if err := db.Migrate(sqlDB, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}
	return &SettingsService{
		db:   sqlDB,
		defs: make(map[string]*definition),
	}, nil
}

// Register declares a setting with its default value and validator
func (s *SettingsService) Register(key string, defaultValue any, validate Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if validate == nil {
		validate = func(v any) (any, error) { return v, nil }
	}
	s.defs[key] = &definition{defaultValue: defaultValue, validate: validate}
}

func (s *SettingsService) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SettingsService) definition(key string) (*definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[key]
	if !ok {
		return nil, syncfolder.NewValidationError("key", "invalid setting key %q", key)
	}
	return def, nil
}

func (s *SettingsService) Get(ctx context.Context, key string) (any, error) {
	def, err := s.definition(key)
	if err != nil {
		return nil, err
	}

	var raw string
	err = s.db.GetContext(ctx, &raw, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return def.defaultValue, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setting %s: %w", key, err)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	// stored values were validated on write, this only restores their type
	return def.validate(value)
}

func (s *SettingsService) GetMany(ctx context.Context, keys []string) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		v, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// GetInt reads an integer setting
func (s *SettingsService) GetInt(ctx context.Context, key string) (int64, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := ValidateInteger(v)
	if err != nil {
		return 0, err
	}
	return n.(int64), nil
}

// Set validates and stores a value. A nil value resets the key to its default.
func (s *SettingsService) Set(ctx context.Context, key string, value any) error {
	return s.SetMany(ctx, map[string]any{key: value})
}

// SetMany validates every value before writing any of them
func (s *SettingsService) SetMany(ctx context.Context, values map[string]any) error {
	type write struct {
		key string
		raw []byte
	}

	writes := make([]write, 0, len(values))
	for key, value := range values {
		def, err := s.definition(key)
		if err != nil {
			return err
		}
		if value == nil {
			writes = append(writes, write{key: key})
			continue
		}
		normalized, err := def.validate(value)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(normalized)
		if err != nil {
			return fmt.Errorf("failed to encode setting %s: %w", key, err)
		}
		writes = append(writes, write{key: key, raw: raw})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, w := range writes {
		if w.raw == nil {
			_, err = tx.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, w.key)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO settings (key, value, updated) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
				w.key, string(w.raw), now,
			)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write setting %s: %w", w.key, err)
		}
		slog.Info("setting updated", "key", w.key, "value", string(w.raw))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ImportYAML seeds settings from a flat YAML mapping of key to value
func (s *SettingsService) ImportYAML(ctx context.Context, r io.Reader) error {
	values := make(map[string]any)
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		// an empty file is a valid empty mapping
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse settings yaml: %w", err)
	}
	return s.SetMany(ctx, values)
}
