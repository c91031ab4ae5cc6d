package folder

import (
	"github.com/openmined/syncfolders/internal/server/tree"
)

type CreateFolderRequest struct {
	ParentID string `json:"parentId" form:"parentId"`
	Name     string `json:"name" form:"name" binding:"required"`
	Public   bool   `json:"public" form:"public"`
}

type ListFoldersRequest struct {
	ParentID string `form:"parentId"`
	// Name is an exact name or a glob such as "sub*"
	Name string `form:"name"`
}

type FolderResponse struct {
	ID        string `json:"id"`
	ParentID  string `json:"parentId,omitempty"`
	Name      string `json:"name"`
	CreatorID string `json:"creatorId"`
	Public    bool   `json:"public"`
	Size      int64  `json:"size"`
	Created   string `json:"created"`
	Updated   string `json:"updated"`

	// sync attributes, only shown to folder admins
	IsSyncFolder *bool     `json:"isSyncFolder,omitempty"`
	SyncPath     string    `json:"syncPath,omitempty"`
	AssetstoreID string    `json:"assetstoreId,omitempty"`
	Meta         tree.Meta `json:"meta,omitempty"`
}

type FileResponse struct {
	ID       string `json:"id"`
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	RelPath  string `json:"relPath"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	MTime    string `json:"mtime"`
	Imported bool   `json:"imported"`

	// host attributes, only shown to folder admins
	Path         string `json:"path,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	AssetstoreID string `json:"assetstoreId,omitempty"`
}

type ListFilesResponse struct {
	Files []*FileResponse `json:"files"`
}

func newFolderResponse(f *tree.Folder, admin bool) *FolderResponse {
	res := &FolderResponse{
		ID:        f.ID,
		ParentID:  f.ParentID,
		Name:      f.Name,
		CreatorID: f.CreatorID,
		Public:    f.Public,
		Size:      f.Size,
		Created:   f.Created,
		Updated:   f.Updated,
	}
	if admin {
		isSync := f.IsSyncFolder
		res.IsSyncFolder = &isSync
		res.SyncPath = f.SyncPath
		res.AssetstoreID = f.AssetstoreID
		res.Meta = f.Meta
	}
	return res
}

func newFileResponse(e *tree.FileEntry, admin bool) *FileResponse {
	res := &FileResponse{
		ID:       e.ID,
		ItemID:   e.ItemID,
		Name:     e.Name,
		RelPath:  e.RelPath,
		Size:     e.Size,
		MimeType: e.MimeType,
		MTime:    e.MTime,
		Imported: e.Imported,
	}
	if admin {
		res.Path = e.Path
		res.Checksum = e.Checksum
		res.AssetstoreID = e.AssetstoreID
	}
	return res
}
