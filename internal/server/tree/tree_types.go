package tree

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// Meta is free-form folder metadata stored as a JSON object
type Meta map[string]any

func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Meta) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Meta{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported meta type %T", src)
	}

	out := Meta{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("decode meta: %w", err)
		}
	}
	*m = out
	return nil
}

type Folder struct {
	ID           string `db:"id" json:"id"`
	ParentID     string `db:"parent_id" json:"parentId"`
	Name         string `db:"name" json:"name"`
	CreatorID    string `db:"creator_id" json:"creatorId"`
	Public       bool   `db:"public" json:"public"`
	Size         int64  `db:"size" json:"size"`
	IsSyncFolder bool   `db:"is_sync_folder" json:"isSyncFolder"`
	SyncPath     string `db:"sync_path" json:"syncPath,omitempty"`
	AssetstoreID string `db:"assetstore_id" json:"assetstoreId,omitempty"`
	Meta         Meta   `db:"meta" json:"meta"`
	Created      string `db:"created" json:"created"`
	Updated      string `db:"updated" json:"updated"`
}

type Item struct {
	ID        string `db:"id" json:"id"`
	FolderID  string `db:"folder_id" json:"folderId"`
	Name      string `db:"name" json:"name"`
	CreatorID string `db:"creator_id" json:"creatorId"`
	Size      int64  `db:"size" json:"size"`
	Created   string `db:"created" json:"created"`
	Updated   string `db:"updated" json:"updated"`
}

type File struct {
	ID           string `db:"id" json:"id"`
	ItemID       string `db:"item_id" json:"itemId"`
	Name         string `db:"name" json:"name"`
	AssetstoreID string `db:"assetstore_id" json:"assetstoreId"`
	Path         string `db:"path" json:"path,omitempty"`
	Checksum     string `db:"checksum" json:"checksum,omitempty"`
	Size         int64  `db:"size" json:"size"`
	MTime        string `db:"mtime" json:"mtime"`
	MimeType     string `db:"mime_type" json:"mimeType"`
	Imported     bool   `db:"imported" json:"imported"`
	Created      string `db:"created" json:"created"`
}

// FileEntry is a file listed below a folder together with where it lives
type FileEntry struct {
	File
	RelPath       string `db:"rel_path" json:"relPath"`
	FolderID      string `db:"folder_id" json:"folderId"`
	FolderCreator string `db:"folder_creator" json:"-"`
	FolderPublic  bool   `db:"folder_public" json:"-"`
}

// FolderStat is one folder of a subtree with the totals of the items it
// holds directly
type FolderStat struct {
	ID         string `db:"id"`
	ParentID   string `db:"parent_id"`
	Name       string `db:"name"`
	Size       int64  `db:"size"`
	DirectSize int64  `db:"direct_size"`
	Items      int    `db:"items"`
}

type CreateFolderParams struct {
	ParentID string
	Name     string
	Creator  string
	Public   bool
	// Reuse returns an existing folder with the same name instead of failing
	Reuse bool
}

type FileParams struct {
	Name         string
	Path         string
	Checksum     string
	Size         int64
	MTime        string
	MimeType     string
	AssetstoreID string
	Imported     bool
}

type SyncMetadataParams struct {
	SyncPath     string
	AssetstoreID string
	Meta         Meta
}
