package tree

import (
	"context"
	"testing"
	"time"

	"github.com/openmined/syncfolders/internal/syncfolder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_ListFilesRecursiveFiltersUnreadable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root := mustFolder(t, s, "", "root")
	mine := mustFolder(t, s, root.ID, "mine")
	theirs, err := s.CreateFolder(ctx, &CreateFolderParams{ParentID: root.ID, Name: "theirs", Creator: "bob"})
	require.NoError(t, err)

	mustFile(t, s, mine.ID, "a.txt", "c1", 1)
	mustFile(t, s, theirs.ID, "b.txt", "c2", 2)
	mustFile(t, s, root.ID, "c.txt", "c3", 3)

	b := NewBackend(s, func(user string, f *Folder) bool {
		return f.CreatorID == user
	})

	files, err := b.ListFilesRecursive(ctx, root.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, []syncfolder.ListedFile{
		{RelPath: "c.txt", Checksum: "c3", Size: 3},
		{RelPath: "mine/a.txt", Checksum: "c1", Size: 1},
	}, files)

	files, err = NewBackend(s, nil).ListFilesRecursive(ctx, root.ID, "anyone")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestBackend_Adapts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	root := mustFolder(t, s, "", "root")
	b := NewBackend(s, nil)

	folder, err := b.CreateFolder(ctx, root.ID, "dir", "alice", true)
	require.NoError(t, err)
	found, err := b.FindFolder(ctx, root.ID, "dir")
	require.NoError(t, err)
	assert.Equal(t, folder, found)

	missing, err := b.FindFolder(ctx, root.ID, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	item, err := b.CreateItem(ctx, folder.ID, "a.txt", "alice", true)
	require.NoError(t, err)
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	file, err := b.CreateOrUpdateFile(ctx, item.ID, &syncfolder.FileMeta{
		Name:     "a.txt",
		Path:     "/host/dir/a.txt",
		Checksum: "c1",
		Size:     7,
		ModTime:  mtime,
		MimeType: "text/plain",
		Imported: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", file.Checksum)

	files, err := s.ListItemFiles(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T12:00:00Z", files[0].MTime)

	nodes, err := b.FolderTree(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	require.NoError(t, b.SetFolderMetadata(ctx, root.ID, &syncfolder.SyncMetadata{
		SyncPath:     "/host",
		AssetstoreID: "fs",
		Meta:         map[string]any{"isSyncFolder": true},
	}))
	got, err := s.GetFolder(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSyncFolder)
	assert.Equal(t, true, got.Meta["isSyncFolder"])
}
