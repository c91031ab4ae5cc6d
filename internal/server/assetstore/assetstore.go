package assetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmined/syncfolders/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS assetstores (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	root TEXT NOT NULL DEFAULT '',
	created TEXT NOT NULL
);
`

const (
	// TypeFilesystem stores files on a host filesystem and can reference
	// them in place
	TypeFilesystem = "filesystem"

	DefaultName = "default"
)

var ErrAssetstoreNotFound = errors.New("assetstore not found")

type Assetstore struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Type    string `db:"type" json:"type"`
	Root    string `db:"root" json:"root"`
	Created string `db:"created" json:"created"`
}

// AssetstoreService is the registry of storage backends that files are
// attributed to
type AssetstoreService struct {
	db *sqlx.DB
}

func NewAssetstoreService(sqlDB *sqlx.DB) (*AssetstoreService, error) {
	if err := db.Migrate(sqlDB, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize assetstores: %w", err)
	}
	return &AssetstoreService{db: sqlDB}, nil
}

// EnsureDefault returns the default filesystem assetstore, registering it
// with root on first use
func (s *AssetstoreService) EnsureDefault(ctx context.Context, root string) (*Assetstore, error) {
	a, err := s.GetByName(ctx, DefaultName)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrAssetstoreNotFound) {
		return nil, err
	}

	a = &Assetstore{
		ID:      uuid.NewString(),
		Name:    DefaultName,
		Type:    TypeFilesystem,
		Root:    root,
		Created: time.Now().UTC().Format(time.RFC3339),
	}
	_, err = s.db.NamedExecContext(ctx,
		`INSERT INTO assetstores (id, name, type, root, created) VALUES (:id, :name, :type, :root, :created)`, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create assetstore: %w", err)
	}
	slog.Info("assetstore created", "id", a.ID, "name", a.Name, "root", a.Root)
	return a, nil
}

func (s *AssetstoreService) Get(ctx context.Context, id string) (*Assetstore, error) {
	var a Assetstore
	err := s.db.GetContext(ctx, &a, `SELECT id, name, type, root, created FROM assetstores WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAssetstoreNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assetstore: %w", err)
	}
	return &a, nil
}

func (s *AssetstoreService) GetByName(ctx context.Context, name string) (*Assetstore, error) {
	var a Assetstore
	err := s.db.GetContext(ctx, &a, `SELECT id, name, type, root, created FROM assetstores WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAssetstoreNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assetstore: %w", err)
	}
	return &a, nil
}

func (s *AssetstoreService) List(ctx context.Context) ([]*Assetstore, error) {
	var stores []*Assetstore
	if err := s.db.SelectContext(ctx, &stores, `SELECT id, name, type, root, created FROM assetstores ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list assetstores: %w", err)
	}
	return stores, nil
}
