package syncfolder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(b *fakeBackend) *Importer {
	return NewImporter(b,
		WithNotifier(b),
		WithWorkers(2),
		WithMimeDetector(func(string) string { return "text/plain" }),
	)
}

func runImport(t *testing.T, imp *Importer, rootID, hostRoot string) *Result {
	t.Helper()
	res, err := imp.Import(context.Background(), &ImportParams{
		RootID:            rootID,
		ImportPath:        hostRoot,
		User:              "alice",
		AssetstoreID:      "fs-1",
		ChecksumSizeLimit: DefaultChecksumSizeLimit,
	})
	require.NoError(t, err)
	return res
}

// assertConverged checks the destination snapshot matches a fresh host scan
func assertConverged(t *testing.T, b *fakeBackend, rootID, hostRoot string) {
	t.Helper()
	host, err := BuildHostSnapshot(context.Background(), hostRoot, nil)
	require.NoError(t, err)
	dest, err := BuildDestinationSnapshot(context.Background(), b, rootID, "alice")
	require.NoError(t, err)
	assert.Equal(t, host, dest)
}

func TestImporter_AcceptanceScenario(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"ala.py":                 "print('ala')",
		"codeswarm.ogv":          "video bytes",
		"subfolder1/plugin.json": `{"version": 1}`,
		"subfolder2/LICENSE":     "Apache License",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)

	res := runImport(t, imp, rootID, host)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 4, res.HostFiles)
	assert.Equal(t, []string{"ala.py", "codeswarm.ogv", "subfolder1/plugin.json", "subfolder2/LICENSE"}, b.itemPaths(rootID))
	assertConverged(t, b, rootID, host)
	assert.Len(t, b.events, 4)

	// mutate the host tree
	require.NoError(t, os.Remove(filepath.Join(host, "codeswarm.ogv")))
	require.NoError(t, os.Rename(filepath.Join(host, "subfolder2"), filepath.Join(host, "subfolderA")))
	writeTree(t, host, map[string]string{
		"ala.txt":                "some text",
		"subfolder1/plugin.json": `{"version": 2}`,
	})
	b.resetMutations()

	res = runImport(t, imp, rootID, host)
	assert.Equal(t, 1, res.Moved)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Unchanged)
	assert.Equal(t, 1, res.Pruned)

	assert.Equal(t, []string{"ala.py", "ala.txt", "subfolder1/plugin.json", "subfolderA/LICENSE"}, b.itemPaths(rootID))
	assert.Equal(t, []string{"subfolder1", "subfolderA"}, b.folderPaths(rootID))
	assertConverged(t, b, rootID, host)

	license := b.fileByPath(rootID, "subfolderA/LICENSE")
	require.NotNil(t, license)
	assert.Equal(t, filepath.Join(host, "subfolderA", "LICENSE"), license.Path)
	assert.Equal(t, "LICENSE", license.Name)

	plugin := b.fileByPath(rootID, "subfolder1/plugin.json")
	require.NotNil(t, plugin)
	assert.Equal(t, sum(`{"version": 2}`), plugin.Checksum)
}

func TestImporter_Idempotent(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"a.txt":       "a",
		"dir/b.txt":   "b",
		"dir/c/d.txt": "d",
		"empty.txt":   "",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	runImport(t, imp, rootID, host)
	b.resetMutations()

	res := runImport(t, imp, rootID, host)
	assert.False(t, res.Changed())
	assert.Equal(t, 4, res.Unchanged)
	assert.Zero(t, b.mutations)
	assert.Empty(t, b.events)
}

func TestImporter_ZeroByteFolderSurvives(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"a.txt":            "a",
		"blanks/empty.txt": "",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	res := runImport(t, imp, rootID, host)
	assert.Zero(t, res.Pruned)
	assert.Equal(t, []string{"blanks"}, b.folderPaths(rootID))
	b.resetMutations()

	res = runImport(t, imp, rootID, host)
	assert.False(t, res.Changed())
	assert.Zero(t, res.Pruned)
	assert.Zero(t, b.mutations)
	assert.Equal(t, []string{"blanks"}, b.folderPaths(rootID))
	assert.Equal(t, []string{"a.txt", "blanks/empty.txt"}, b.itemPaths(rootID))
}

func TestImporter_SymlinkedRootKeepsDestination(t *testing.T) {
	realDir := t.TempDir()
	writeTree(t, realDir, map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "bb",
	})
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	res := runImport(t, imp, rootID, realDir)
	assert.Equal(t, 2, res.Created)

	res = runImport(t, imp, rootID, link)
	assert.Equal(t, 2, res.HostFiles)
	assert.Equal(t, 2, res.Unchanged)
	assert.Zero(t, res.Deleted)
	assert.Zero(t, res.Pruned)
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, b.itemPaths(rootID))
	assert.Equal(t, []string{"sub"}, b.folderPaths(rootID))
}

func TestImporter_StampsRootMetadata(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{"a.txt": "a"})

	b, rootID := newFakeBackend()
	runImport(t, newTestImporter(b), rootID, host)

	md := b.folders[rootID].meta
	require.NotNil(t, md)
	assert.Equal(t, host, md.SyncPath)
	assert.Equal(t, "fs-1", md.AssetstoreID)
	assert.Equal(t, map[string]any{"isSyncFolder": true}, md.Meta)
}

func TestImporter_NotifiesImportedItems(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{"dir/a.txt": "a"})

	b, rootID := newFakeBackend()
	runImport(t, newTestImporter(b), rootID, host)

	require.Len(t, b.events, 1)
	assert.Equal(t, EventAssetstoreImported, b.events[0].event)
	payload, ok := b.events[0].payload.(*ImportedPayload)
	require.True(t, ok)
	assert.Equal(t, "item", payload.Type)
	assert.Equal(t, filepath.Join(host, "dir", "a.txt"), payload.ImportPath)
	assert.Contains(t, b.items, payload.ID)
}

func TestImporter_DeletionPrunesAncestors(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"keep.txt":       "keep",
		"x/y/z/only.txt": "only",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	runImport(t, imp, rootID, host)
	assert.Equal(t, []string{"x", "x/y", "x/y/z"}, b.folderPaths(rootID))

	require.NoError(t, os.RemoveAll(filepath.Join(host, "x")))
	res := runImport(t, imp, rootID, host)

	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 3, res.Pruned)
	assert.Empty(t, b.folderPaths(rootID))
	assert.Equal(t, []string{"keep.txt"}, b.itemPaths(rootID))
	assert.Equal(t, int64(4), b.folders[rootID].Size)
}

func TestImporter_SwapAndMoveOverwrite(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
		"p.txt": "one",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	runImport(t, imp, rootID, host)

	// swap a and b, move p's content to q and put new content at p
	writeTree(t, host, map[string]string{
		"a.txt": "beta",
		"b.txt": "alpha",
		"q.txt": "one",
		"p.txt": "two",
	})
	res := runImport(t, imp, rootID, host)
	assert.Equal(t, 3, res.Moved)
	assert.Equal(t, 1, res.Created)
	assert.Zero(t, res.Deleted)

	assert.Equal(t, []string{"a.txt", "b.txt", "p.txt", "q.txt"}, b.itemPaths(rootID))
	assertConverged(t, b, rootID, host)
	assert.Equal(t, filepath.Join(host, "a.txt"), b.fileByPath(rootID, "a.txt").Path)
}

func TestImporter_MoveOntoExistingItemSupersedesIt(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{
		"src.txt": "moving",
		"dst.txt": "old",
	})

	b, rootID := newFakeBackend()
	imp := newTestImporter(b)
	runImport(t, imp, rootID, host)

	require.NoError(t, os.Rename(filepath.Join(host, "src.txt"), filepath.Join(host, "dst.txt")))
	res := runImport(t, imp, rootID, host)
	assert.Equal(t, 1, res.Moved)
	assert.Zero(t, res.Deleted)

	assert.Equal(t, []string{"dst.txt"}, b.itemPaths(rootID))
	assertConverged(t, b, rootID, host)
}

func TestImporter_Validation(t *testing.T) {
	b, rootID := newFakeBackend()
	imp := newTestImporter(b)

	_, err := imp.Import(context.Background(), &ImportParams{RootID: rootID, ImportPath: "relative/path"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = imp.Import(context.Background(), &ImportParams{ImportPath: t.TempDir()})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = imp.Import(context.Background(), &ImportParams{
		RootID:     rootID,
		ImportPath: filepath.Join(t.TempDir(), "missing"),
	})
	assert.ErrorIs(t, err, ErrIO)
	assert.Zero(t, b.mutations)
}

func TestImporter_StaleDestinationAborts(t *testing.T) {
	host := t.TempDir()
	writeTree(t, host, map[string]string{"a.txt": "a", "b.txt": "b"})

	b, rootID := newFakeBackend()
	imp := NewImporter(&staleBackend{fakeBackend: b}, WithWorkers(1))

	runImport(t, NewImporter(b), rootID, host)
	require.NoError(t, os.Remove(filepath.Join(host, "b.txt")))

	_, err := imp.Import(context.Background(), &ImportParams{RootID: rootID, ImportPath: host})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "b.txt", nf.Path)
}

// staleBackend reports files it can no longer resolve
type staleBackend struct {
	*fakeBackend
}

func (b *staleBackend) FindItem(context.Context, string, string) (*Item, error) {
	return nil, nil
}
