package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openmined/syncfolders/internal/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	creator_id TEXT NOT NULL DEFAULT '',
	public INTEGER NOT NULL DEFAULT 0,
	size INTEGER NOT NULL DEFAULT 0,
	is_sync_folder INTEGER NOT NULL DEFAULT 0,
	sync_path TEXT NOT NULL DEFAULT '',
	assetstore_id TEXT NOT NULL DEFAULT '',
	meta TEXT NOT NULL DEFAULT '{}',
	created TEXT NOT NULL,
	updated TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_folders_parent_name ON folders(parent_id, name);

CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	folder_id TEXT NOT NULL REFERENCES folders(id),
	name TEXT NOT NULL,
	creator_id TEXT NOT NULL DEFAULT '',
	size INTEGER NOT NULL DEFAULT 0,
	created TEXT NOT NULL,
	updated TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_folder_name ON items(folder_id, name);

CREATE TABLE IF NOT EXISTS files (
	id TEXT PRIMARY KEY,
	item_id TEXT NOT NULL REFERENCES items(id),
	name TEXT NOT NULL,
	assetstore_id TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	checksum TEXT NOT NULL DEFAULT '',
	size INTEGER NOT NULL DEFAULT 0,
	mtime TEXT NOT NULL DEFAULT '',
	mime_type TEXT NOT NULL DEFAULT '',
	imported INTEGER NOT NULL DEFAULT 0,
	created TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_item ON files(item_id);
CREATE INDEX IF NOT EXISTS idx_files_checksum ON files(checksum);
`

// subtreeCTE selects the ids of a folder and all of its descendants
const subtreeCTE = `
WITH RECURSIVE subtree(id) AS (
	SELECT id FROM folders WHERE id = ?
	UNION ALL
	SELECT f.id FROM folders f JOIN subtree s ON f.parent_id = s.id
)`

// timeFormat is fixed width so stored timestamps sort lexically
const timeFormat = "2006-01-02T15:04:05.000000Z"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrInvalidName    = errors.New("invalid name")
)

// Store persists the folder, item and file tree in sqlite
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStore(sqlDB *sqlx.DB) (*Store, error) {
	if err := db.Migrate(sqlDB, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize tree store: %w", err)
	}
	return &Store{db: sqlDB, now: time.Now}, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeFormat)
}

func newID() string {
	return uuid.NewString()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// withTx runs fn in a transaction, rolling back when it fails
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
