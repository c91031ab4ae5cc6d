package syncfolder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type fakeFolder struct {
	Folder
	seq  int
	meta *SyncMetadata
}

type fakeItem struct {
	Item
	seq int
}

type fakeFile struct {
	File
	imported bool
	mimeType string
}

type fakeEvent struct {
	event   string
	payload any
}

// fakeBackend is an in-memory Backend that counts mutating calls
type fakeBackend struct {
	mu        sync.Mutex
	seq       int
	folders   map[string]*fakeFolder
	items     map[string]*fakeItem
	files     map[string]*fakeFile
	mutations int
	events    []fakeEvent
}

func newFakeBackend() (*fakeBackend, string) {
	b := &fakeBackend{
		folders: make(map[string]*fakeFolder),
		items:   make(map[string]*fakeItem),
		files:   make(map[string]*fakeFile),
	}
	root := b.addFolder("", "root")
	return b, root.ID
}

func (b *fakeBackend) nextID(prefix string) (string, int) {
	b.seq++
	return fmt.Sprintf("%s%d", prefix, b.seq), b.seq
}

func (b *fakeBackend) addFolder(parentID, name string) *fakeFolder {
	id, seq := b.nextID("folder-")
	f := &fakeFolder{Folder: Folder{ID: id, ParentID: parentID, Name: name}, seq: seq}
	b.folders[id] = f
	return f
}

func (b *fakeBackend) Notify(event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, fakeEvent{event: event, payload: payload})
}

// relFolderPath returns the path of folderID below rootID, or false when
// folderID is not inside rootID
func (b *fakeBackend) relFolderPath(rootID, folderID string) (string, bool) {
	var parts []string
	for id := folderID; id != rootID; {
		f, ok := b.folders[id]
		if !ok || f.ParentID == "" {
			return "", false
		}
		parts = append([]string{f.Name}, parts...)
		id = f.ParentID
	}
	return strings.Join(parts, "/"), true
}

func (b *fakeBackend) ListFilesRecursive(_ context.Context, rootID, _ string) ([]ListedFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []ListedFile
	for _, f := range b.files {
		item := b.items[f.ItemID]
		dir, ok := b.relFolderPath(rootID, item.FolderID)
		if !ok {
			continue
		}
		rel := item.Name
		if dir != "" {
			rel = dir + "/" + item.Name
		}
		out = append(out, ListedFile{RelPath: rel, Checksum: f.Checksum, Size: f.Size})
	}
	return out, nil
}

func (b *fakeBackend) FindFolder(_ context.Context, parentID, name string) (*Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f := b.findFolder(parentID, name); f != nil {
		folder := f.Folder
		return &folder, nil
	}
	return nil, nil
}

func (b *fakeBackend) findFolder(parentID, name string) *fakeFolder {
	var found *fakeFolder
	for _, f := range b.folders {
		if f.ParentID == parentID && f.Name == name && (found == nil || f.seq < found.seq) {
			found = f
		}
	}
	return found
}

func (b *fakeBackend) CreateFolder(_ context.Context, parentID, name, _ string, reuse bool) (*Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.folders[parentID]; !ok {
		return nil, fmt.Errorf("parent %s missing", parentID)
	}
	if f := b.findFolder(parentID, name); f != nil {
		if !reuse {
			return nil, fmt.Errorf("folder %s exists", name)
		}
		folder := f.Folder
		return &folder, nil
	}
	b.mutations++
	folder := b.addFolder(parentID, name).Folder
	return &folder, nil
}

func (b *fakeBackend) RemoveFolder(_ context.Context, folderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.folders[folderID]; !ok {
		return fmt.Errorf("folder %s missing", folderID)
	}
	b.mutations++
	b.removeFolder(folderID)
	return nil
}

func (b *fakeBackend) removeFolder(folderID string) {
	for id, f := range b.folders {
		if f.ParentID == folderID {
			b.removeFolder(id)
		}
	}
	for id, it := range b.items {
		if it.FolderID == folderID {
			b.removeItem(id)
		}
	}
	delete(b.folders, folderID)
}

func (b *fakeBackend) FindItem(_ context.Context, folderID, name string) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it := b.findItem(folderID, name); it != nil {
		item := it.Item
		return &item, nil
	}
	return nil, nil
}

func (b *fakeBackend) findItem(folderID, name string) *fakeItem {
	var found *fakeItem
	for _, it := range b.items {
		if it.FolderID == folderID && it.Name == name && (found == nil || it.seq < found.seq) {
			found = it
		}
	}
	return found
}

func (b *fakeBackend) CreateItem(_ context.Context, folderID, name, _ string, reuse bool) (*Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it := b.findItem(folderID, name); it != nil && reuse {
		item := it.Item
		return &item, nil
	}
	b.mutations++
	id, seq := b.nextID("item-")
	it := &fakeItem{Item: Item{ID: id, FolderID: folderID, Name: name}, seq: seq}
	b.items[id] = it
	item := it.Item
	return &item, nil
}

func (b *fakeBackend) MoveItem(_ context.Context, itemID, folderID, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[itemID]
	if !ok {
		return fmt.Errorf("item %s missing", itemID)
	}
	b.mutations++
	it.FolderID = folderID
	it.Name = name
	for _, f := range b.files {
		if f.ItemID == itemID {
			f.Name = name
		}
	}
	return nil
}

func (b *fakeBackend) RemoveItem(_ context.Context, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[itemID]; !ok {
		return fmt.Errorf("item %s missing", itemID)
	}
	b.mutations++
	b.removeItem(itemID)
	return nil
}

func (b *fakeBackend) removeItem(itemID string) {
	for id, f := range b.files {
		if f.ItemID == itemID {
			delete(b.files, id)
		}
	}
	delete(b.items, itemID)
}

func (b *fakeBackend) CreateOrUpdateFile(_ context.Context, itemID string, meta *FileMeta) (*File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[itemID]
	if !ok {
		return nil, fmt.Errorf("item %s missing", itemID)
	}
	b.mutations++

	var file *fakeFile
	for _, f := range b.files {
		if f.ItemID == itemID {
			file = f
			break
		}
	}
	if file == nil {
		id, _ := b.nextID("file-")
		file = &fakeFile{File: File{ID: id, ItemID: itemID}}
		b.files[id] = file
	}
	file.Name = meta.Name
	file.Path = meta.Path
	file.Checksum = meta.Checksum
	file.Size = meta.Size
	file.imported = meta.Imported
	file.mimeType = meta.MimeType
	it.Size = meta.Size

	out := file.File
	return &out, nil
}

func (b *fakeBackend) UpdateFilePaths(_ context.Context, rootID, checksum, path string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for _, f := range b.files {
		if f.Checksum != checksum || !f.imported {
			continue
		}
		if _, ok := b.relFolderPath(rootID, b.items[f.ItemID].FolderID); !ok {
			continue
		}
		if f.Path != path {
			f.Path = path
			n++
		}
	}
	if n > 0 {
		b.mutations++
	}
	return n, nil
}

func (b *fakeBackend) FolderTree(_ context.Context, rootID string) ([]FolderNode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var nodes []FolderNode
	for id, f := range b.folders {
		if id != rootID {
			if _, ok := b.relFolderPath(rootID, id); !ok {
				continue
			}
		}
		node := FolderNode{ID: id, ParentID: f.ParentID, Name: f.Name, Size: f.Size}
		for _, it := range b.items {
			if it.FolderID == id {
				node.Items++
				node.DirectSize += it.Size
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (b *fakeBackend) UpdateFolderSize(_ context.Context, folderID string, size int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s missing", folderID)
	}
	b.mutations++
	f.Size = size
	return nil
}

func (b *fakeBackend) SetFolderMetadata(_ context.Context, folderID string, md *SyncMetadata) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s missing", folderID)
	}
	f.meta = md
	return nil
}

// itemPaths lists the relative path of every item below rootID
func (b *fakeBackend) itemPaths(rootID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var paths []string
	for _, it := range b.items {
		dir, ok := b.relFolderPath(rootID, it.FolderID)
		if !ok {
			continue
		}
		if dir == "" {
			paths = append(paths, it.Name)
		} else {
			paths = append(paths, dir+"/"+it.Name)
		}
	}
	sort.Strings(paths)
	return paths
}

// folderPaths lists every folder below rootID, excluding the root itself
func (b *fakeBackend) folderPaths(rootID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var paths []string
	for id := range b.folders {
		if id == rootID {
			continue
		}
		if p, ok := b.relFolderPath(rootID, id); ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

func (b *fakeBackend) fileByPath(rootID, rel string) *fakeFile {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.files {
		item := b.items[f.ItemID]
		dir, ok := b.relFolderPath(rootID, item.FolderID)
		if !ok {
			continue
		}
		p := item.Name
		if dir != "" {
			p = dir + "/" + item.Name
		}
		if p == rel {
			return f
		}
	}
	return nil
}

func (b *fakeBackend) resetMutations() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutations = 0
	b.events = nil
}
