package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const itemColumns = `id, folder_id, name, creator_id, size, created, updated`

func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	var it Item
	err := s.db.GetContext(ctx, &it, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// FindItem returns the oldest item in folderID called name, or nil
func (s *Store) FindItem(ctx context.Context, folderID, name string) (*Item, error) {
	var it Item
	err := s.db.GetContext(ctx, &it,
		`SELECT `+itemColumns+` FROM items WHERE folder_id = ? AND name = ? ORDER BY rowid LIMIT 1`,
		folderID, name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &it, nil
}

func (s *Store) ListItems(ctx context.Context, folderID string) ([]*Item, error) {
	var items []*Item
	err := s.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM items WHERE folder_id = ? ORDER BY name, rowid`,
		folderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CreateItem creates an item in folderID. With reuse set an existing item of
// the same name is returned instead.
func (s *Store) CreateItem(ctx context.Context, folderID, name, creator string, reuse bool) (*Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := s.GetFolder(ctx, folderID); err != nil {
		return nil, err
	}

	if reuse {
		existing, err := s.FindItem(ctx, folderID, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := s.timestamp()
	it := &Item{
		ID:        newID(),
		FolderID:  folderID,
		Name:      name,
		CreatorID: creator,
		Created:   now,
		Updated:   now,
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES (:id, :folder_id, :name, :creator_id, :size, :created, :updated)`,
		it,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return it, nil
}

// MoveItem relocates an item to folderID under a new name. The item's files
// take the new name too.
func (s *Store) MoveItem(ctx context.Context, id, folderID, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, err := s.GetFolder(ctx, folderID); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE items SET folder_id = ?, name = ?, updated = ? WHERE id = ?`,
			folderID, name, s.timestamp(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to move item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE files SET name = ? WHERE item_id = ?`, name, id); err != nil {
			return fmt.Errorf("failed to rename files: %w", err)
		}
		return nil
	})
}

// RemoveItem deletes an item and its files
func (s *Store) RemoveItem(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE item_id = ?`, id); err != nil {
			return fmt.Errorf("failed to remove files: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return nil
	})
}
