package syncfolder

import (
	"context"
	"time"
)

type Folder struct {
	ID       string
	ParentID string
	Name     string
	Size     int64
}

type Item struct {
	ID       string
	FolderID string
	Name     string
	Size     int64
}

type File struct {
	ID       string
	ItemID   string
	Name     string
	Path     string
	Checksum string
	Size     int64
}

// FileMeta describes a host file referenced in place by the destination
type FileMeta struct {
	Name         string
	Path         string
	Checksum     string
	Size         int64
	ModTime      time.Time
	MimeType     string
	AssetstoreID string
	Imported     bool
}

// ListedFile is a file below a folder, with its path relative to that folder
type ListedFile struct {
	RelPath  string
	Checksum string
	Size     int64
}

// FolderNode is one folder of a subtree as loaded in a single read.
// DirectSize and Items only count the items held directly by the folder.
type FolderNode struct {
	ID         string
	ParentID   string
	Name       string
	Size       int64
	DirectSize int64
	Items      int
}

type SyncMetadata struct {
	SyncPath     string
	AssetstoreID string
	Meta         map[string]any
}

// Backend is the destination tree a sync session mutates.
//
// Find* methods return a nil value and a nil error when nothing matches.
// Create* methods with reuse set return the existing node of the same name.
type Backend interface {
	ListFilesRecursive(ctx context.Context, rootID, user string) ([]ListedFile, error)

	FindFolder(ctx context.Context, parentID, name string) (*Folder, error)
	CreateFolder(ctx context.Context, parentID, name, creator string, reuse bool) (*Folder, error)
	RemoveFolder(ctx context.Context, folderID string) error

	FindItem(ctx context.Context, folderID, name string) (*Item, error)
	CreateItem(ctx context.Context, folderID, name, creator string, reuse bool) (*Item, error)
	MoveItem(ctx context.Context, itemID, folderID, name string) error
	RemoveItem(ctx context.Context, itemID string) error

	CreateOrUpdateFile(ctx context.Context, itemID string, meta *FileMeta) (*File, error)
	UpdateFilePaths(ctx context.Context, rootID, checksum, path string) (int64, error)

	FolderTree(ctx context.Context, rootID string) ([]FolderNode, error)
	UpdateFolderSize(ctx context.Context, folderID string, size int64) error
	SetFolderMetadata(ctx context.Context, folderID string, md *SyncMetadata) error
}
