package tree

import (
	"context"
	"time"

	"github.com/openmined/syncfolders/internal/syncfolder"
)

// ReadFilter reports whether user may read files held by folder
type ReadFilter func(user string, folder *Folder) bool

// Backend exposes a Store as the destination of a sync session
type Backend struct {
	store   *Store
	canRead ReadFilter
}

var _ syncfolder.Backend = (*Backend)(nil)

func NewBackend(store *Store, canRead ReadFilter) *Backend {
	if canRead == nil {
		canRead = func(string, *Folder) bool { return true }
	}
	return &Backend{store: store, canRead: canRead}
}

func (b *Backend) ListFilesRecursive(ctx context.Context, rootID, user string) ([]syncfolder.ListedFile, error) {
	entries, err := b.store.ListFiles(ctx, rootID)
	if err != nil {
		return nil, err
	}

	readable := make(map[string]bool)
	files := make([]syncfolder.ListedFile, 0, len(entries))
	for _, e := range entries {
		ok, seen := readable[e.FolderID]
		if !seen {
			ok = b.canRead(user, &Folder{ID: e.FolderID, CreatorID: e.FolderCreator, Public: e.FolderPublic})
			readable[e.FolderID] = ok
		}
		if !ok {
			continue
		}
		files = append(files, syncfolder.ListedFile{
			RelPath:  e.RelPath,
			Checksum: e.Checksum,
			Size:     e.Size,
		})
	}
	return files, nil
}

func (b *Backend) FindFolder(ctx context.Context, parentID, name string) (*syncfolder.Folder, error) {
	f, err := b.store.FindFolder(ctx, parentID, name)
	if err != nil || f == nil {
		return nil, err
	}
	return toSyncFolder(f), nil
}

func (b *Backend) CreateFolder(ctx context.Context, parentID, name, creator string, reuse bool) (*syncfolder.Folder, error) {
	f, err := b.store.CreateFolder(ctx, &CreateFolderParams{
		ParentID: parentID,
		Name:     name,
		Creator:  creator,
		Reuse:    reuse,
	})
	if err != nil {
		return nil, err
	}
	return toSyncFolder(f), nil
}

func (b *Backend) RemoveFolder(ctx context.Context, folderID string) error {
	return b.store.RemoveFolder(ctx, folderID)
}

func (b *Backend) FindItem(ctx context.Context, folderID, name string) (*syncfolder.Item, error) {
	it, err := b.store.FindItem(ctx, folderID, name)
	if err != nil || it == nil {
		return nil, err
	}
	return toSyncItem(it), nil
}

func (b *Backend) CreateItem(ctx context.Context, folderID, name, creator string, reuse bool) (*syncfolder.Item, error) {
	it, err := b.store.CreateItem(ctx, folderID, name, creator, reuse)
	if err != nil {
		return nil, err
	}
	return toSyncItem(it), nil
}

func (b *Backend) MoveItem(ctx context.Context, itemID, folderID, name string) error {
	return b.store.MoveItem(ctx, itemID, folderID, name)
}

func (b *Backend) RemoveItem(ctx context.Context, itemID string) error {
	return b.store.RemoveItem(ctx, itemID)
}

func (b *Backend) CreateOrUpdateFile(ctx context.Context, itemID string, meta *syncfolder.FileMeta) (*syncfolder.File, error) {
	f, err := b.store.CreateOrUpdateFile(ctx, itemID, &FileParams{
		Name:         meta.Name,
		Path:         meta.Path,
		Checksum:     meta.Checksum,
		Size:         meta.Size,
		MTime:        meta.ModTime.UTC().Format(time.RFC3339Nano),
		MimeType:     meta.MimeType,
		AssetstoreID: meta.AssetstoreID,
		Imported:     meta.Imported,
	})
	if err != nil {
		return nil, err
	}
	return &syncfolder.File{
		ID:       f.ID,
		ItemID:   f.ItemID,
		Name:     f.Name,
		Path:     f.Path,
		Checksum: f.Checksum,
		Size:     f.Size,
	}, nil
}

func (b *Backend) UpdateFilePaths(ctx context.Context, rootID, checksum, path string) (int64, error) {
	return b.store.UpdateFilePaths(ctx, rootID, checksum, path)
}

func (b *Backend) FolderTree(ctx context.Context, rootID string) ([]syncfolder.FolderNode, error) {
	stats, err := b.store.FolderTree(ctx, rootID)
	if err != nil {
		return nil, err
	}
	nodes := make([]syncfolder.FolderNode, len(stats))
	for i, st := range stats {
		nodes[i] = syncfolder.FolderNode{
			ID:         st.ID,
			ParentID:   st.ParentID,
			Name:       st.Name,
			Size:       st.Size,
			DirectSize: st.DirectSize,
			Items:      st.Items,
		}
	}
	return nodes, nil
}

func (b *Backend) UpdateFolderSize(ctx context.Context, folderID string, size int64) error {
	return b.store.UpdateFolderSize(ctx, folderID, size)
}

func (b *Backend) SetFolderMetadata(ctx context.Context, folderID string, md *syncfolder.SyncMetadata) error {
	return b.store.SetSyncMetadata(ctx, folderID, &SyncMetadataParams{
		SyncPath:     md.SyncPath,
		AssetstoreID: md.AssetstoreID,
		Meta:         Meta(md.Meta),
	})
}

func toSyncFolder(f *Folder) *syncfolder.Folder {
	return &syncfolder.Folder{ID: f.ID, ParentID: f.ParentID, Name: f.Name, Size: f.Size}
}

func toSyncItem(it *Item) *syncfolder.Item {
	return &syncfolder.Item{ID: it.ID, FolderID: it.FolderID, Name: it.Name, Size: it.Size}
}
