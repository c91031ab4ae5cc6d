package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const fileColumns = `id, item_id, name, assetstore_id, path, checksum, size, mtime, mime_type, imported, created`

func (s *Store) ListItemFiles(ctx context.Context, itemID string) ([]*File, error) {
	var files []*File
	err := s.db.SelectContext(ctx, &files,
		`SELECT `+fileColumns+` FROM files WHERE item_id = ? ORDER BY rowid`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list item files: %w", err)
	}
	return files, nil
}

// CreateOrUpdateFile sets the file of an item, creating it when the item has
// none yet, and refreshes the item size
func (s *Store) CreateOrUpdateFile(ctx context.Context, itemID string, params *FileParams) (*File, error) {
	if err := validateName(params.Name); err != nil {
		return nil, err
	}

	var file File
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM items WHERE id = ?`, itemID); err != nil {
			return fmt.Errorf("failed to check item: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}

		err := tx.GetContext(ctx, &file,
			`SELECT `+fileColumns+` FROM files WHERE item_id = ? ORDER BY rowid LIMIT 1`, itemID,
		)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			file = File{ID: newID(), ItemID: itemID, Created: s.timestamp()}
		case err != nil:
			return fmt.Errorf("failed to read file: %w", err)
		}

		file.Name = params.Name
		file.Path = params.Path
		file.Checksum = params.Checksum
		file.Size = params.Size
		file.MTime = params.MTime
		file.MimeType = params.MimeType
		file.AssetstoreID = params.AssetstoreID
		file.Imported = params.Imported

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO files (`+fileColumns+`)
			VALUES (:id, :item_id, :name, :assetstore_id, :path, :checksum, :size, :mtime, :mime_type, :imported, :created)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				assetstore_id = excluded.assetstore_id,
				path = excluded.path,
				checksum = excluded.checksum,
				size = excluded.size,
				mtime = excluded.mtime,
				mime_type = excluded.mime_type,
				imported = excluded.imported`,
			&file,
		)
		if err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE items
			SET size = (SELECT COALESCE(SUM(size), 0) FROM files WHERE item_id = ?), updated = ?
			WHERE id = ?`,
			itemID, s.timestamp(), itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to update item size: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// UpdateFilePaths points every imported file below rootID whose checksum
// matches at path, returning the number of files changed
func (s *Store) UpdateFilePaths(ctx context.Context, rootID, checksum, path string) (int64, error) {
	res, err := s.db.ExecContext(ctx, subtreeCTE+`
		UPDATE files SET path = ?
		WHERE checksum = ? AND imported = 1 AND path != ?
		AND item_id IN (SELECT i.id FROM items i JOIN subtree s ON i.folder_id = s.id)`,
		rootID, path, checksum, path,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update file paths: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update file paths: %w", err)
	}
	return n, nil
}

// ListFiles returns every file below rootID ordered by its path relative to
// rootID
func (s *Store) ListFiles(ctx context.Context, rootID string) ([]*FileEntry, error) {
	var entries []*FileEntry
	err := s.db.SelectContext(ctx, &entries, `
		WITH RECURSIVE subtree(id, rel, creator_id, public) AS (
			SELECT id, '', creator_id, public FROM folders WHERE id = ?
			UNION ALL
			SELECT f.id,
				CASE WHEN s.rel = '' THEN f.name ELSE s.rel || '/' || f.name END,
				f.creator_id, f.public
			FROM folders f JOIN subtree s ON f.parent_id = s.id
		)
		SELECT
			fl.id, fl.item_id, fl.name, fl.assetstore_id, fl.path, fl.checksum, fl.size,
			fl.mtime, fl.mime_type, fl.imported, fl.created,
			CASE WHEN s.rel = '' THEN i.name ELSE s.rel || '/' || i.name END AS rel_path,
			s.id AS folder_id,
			s.creator_id AS folder_creator,
			s.public AS folder_public
		FROM subtree s
		JOIN items i ON i.folder_id = s.id
		JOIN files fl ON fl.item_id = i.id
		ORDER BY rel_path, fl.rowid`, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return entries, nil
}
