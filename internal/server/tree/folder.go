package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"

	"github.com/jmoiron/sqlx"
)

const folderColumns = `id, parent_id, name, creator_id, public, size, is_sync_folder, sync_path, assetstore_id, meta, created, updated`

func (s *Store) GetFolder(ctx context.Context, id string) (*Folder, error) {
	var f Folder
	err := s.db.GetContext(ctx, &f, `SELECT `+folderColumns+` FROM folders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return &f, nil
}

// FindFolder returns the oldest child of parentID called name, or nil
func (s *Store) FindFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	var f Folder
	err := s.db.GetContext(ctx, &f,
		`SELECT `+folderColumns+` FROM folders WHERE parent_id = ? AND name = ? ORDER BY rowid LIMIT 1`,
		parentID, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find folder: %w", err)
	}
	return &f, nil
}

// ListFolders returns the children of parentID. An empty parentID lists
// top level folders.
func (s *Store) ListFolders(ctx context.Context, parentID string) ([]*Folder, error) {
	var folders []*Folder
	err := s.db.SelectContext(ctx, &folders,
		`SELECT `+folderColumns+` FROM folders WHERE parent_id = ? ORDER BY name, rowid`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// CreateFolder creates a folder below params.ParentID. Child folders are
// public when their parent is.
func (s *Store) CreateFolder(ctx context.Context, params *CreateFolderParams) (*Folder, error) {
	if err := validateName(params.Name); err != nil {
		return nil, err
	}

	public := params.Public
	if params.ParentID != "" {
		parent, err := s.GetFolder(ctx, params.ParentID)
		if err != nil {
			return nil, err
		}
		public = public || parent.Public
	}

	existing, err := s.FindFolder(ctx, params.ParentID, params.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if params.Reuse {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: folder %q already exists", ErrInvalidName, params.Name)
	}

	now := s.timestamp()
	f := &Folder{
		ID:        newID(),
		ParentID:  params.ParentID,
		Name:      params.Name,
		CreatorID: params.Creator,
		Public:    public,
		Meta:      Meta{},
		Created:   now,
		Updated:   now,
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO folders (`+folderColumns+`)
		VALUES (:id, :parent_id, :name, :creator_id, :public, :size, :is_sync_folder, :sync_path, :assetstore_id, :meta, :created, :updated)`,
		f,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return f, nil
}

// RemoveFolder deletes a folder with every folder, item and file below it
func (s *Store) RemoveFolder(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, subtreeCTE+`
			DELETE FROM files WHERE item_id IN (
				SELECT i.id FROM items i JOIN subtree s ON i.folder_id = s.id
			)`, id); err != nil {
			return fmt.Errorf("failed to remove files: %w", err)
		}

		if _, err := tx.ExecContext(ctx, subtreeCTE+`
			DELETE FROM items WHERE folder_id IN (SELECT id FROM subtree)`, id); err != nil {
			return fmt.Errorf("failed to remove items: %w", err)
		}

		res, err := tx.ExecContext(ctx, subtreeCTE+`
			DELETE FROM folders WHERE id IN (SELECT id FROM subtree)`, id)
		if err != nil {
			return fmt.Errorf("failed to remove folders: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
		}
		return nil
	})
}

// FolderTree returns a folder and all its descendants, each with the size
// and count of the items it holds directly
func (s *Store) FolderTree(ctx context.Context, rootID string) ([]*FolderStat, error) {
	var stats []*FolderStat
	err := s.db.SelectContext(ctx, &stats, subtreeCTE+`
		SELECT f.id, f.parent_id, f.name, f.size,
			COALESCE(SUM(i.size), 0) AS direct_size,
			COUNT(i.id) AS items
		FROM folders f
		JOIN subtree s ON f.id = s.id
		LEFT JOIN items i ON i.folder_id = f.id
		GROUP BY f.id`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to load folder tree: %w", err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, rootID)
	}
	return stats, nil
}

func (s *Store) UpdateFolderSize(ctx context.Context, id string, size int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE folders SET size = ?, updated = ? WHERE id = ?`,
		size, s.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update folder size: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	return nil
}

// SetSyncMetadata marks a folder as a sync root and merges params.Meta into
// its existing metadata
func (s *Store) SetSyncMetadata(ctx context.Context, id string, params *SyncMetadataParams) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var meta Meta
		err := tx.GetContext(ctx, &meta, `SELECT meta FROM folders WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrFolderNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to read folder meta: %w", err)
		}

		if meta == nil {
			meta = Meta{}
		}
		maps.Copy(meta, params.Meta)

		_, err = tx.ExecContext(ctx, `
			UPDATE folders
			SET is_sync_folder = 1, sync_path = ?, assetstore_id = ?, meta = ?, updated = ?
			WHERE id = ?`,
			params.SyncPath, params.AssetstoreID, meta, s.timestamp(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to set sync metadata: %w", err)
		}
		return nil
	})
}
