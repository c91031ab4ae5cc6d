package folder

import (
	"fmt"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/acl"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/server/tree"
)

type FolderHandler struct {
	store *tree.Store
	acl   *acl.ACLService
}

func New(store *tree.Store, aclSvc *acl.ACLService) *FolderHandler {
	return &FolderHandler{
		store: store,
		acl:   aclSvc,
	}
}

func (h *FolderHandler) Create(ctx *gin.Context) {
	var req CreateFolderRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	user := api.User(ctx)
	if req.ParentID != "" {
		if _, err := h.acl.RequireFolderAccess(ctx.Request.Context(), user, req.ParentID, acl.AccessWrite); err != nil {
			api.AbortWithServiceError(ctx, err)
			return
		}
	}

	folder, err := h.store.CreateFolder(ctx.Request.Context(), &tree.CreateFolderParams{
		ParentID: req.ParentID,
		Name:     req.Name,
		Creator:  user,
		Public:   req.Public,
	})
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusCreated, newFolderResponse(folder, true))
}

// List returns the readable children of a folder
func (h *FolderHandler) List(ctx *gin.Context) {
	var req ListFoldersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}
	if req.Name != "" && !doublestar.ValidatePattern(req.Name) {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("invalid name pattern %q", req.Name))
		return
	}

	user := api.User(ctx)
	if req.ParentID != "" {
		if _, err := h.acl.RequireFolderAccess(ctx.Request.Context(), user, req.ParentID, acl.AccessRead); err != nil {
			api.AbortWithServiceError(ctx, err)
			return
		}
	}

	folders, err := h.store.ListFolders(ctx.Request.Context(), req.ParentID)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	res := make([]*FolderResponse, 0, len(folders))
	for _, f := range folders {
		level := h.acl.FolderAccess(user, f)
		if !level.Has(acl.AccessRead) {
			continue
		}
		if req.Name != "" {
			// pattern validated above
			if ok, _ := doublestar.Match(req.Name, f.Name); !ok {
				continue
			}
		}
		res = append(res, newFolderResponse(f, level.Has(acl.AccessAdmin)))
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"folders": res,
	})
}

func (h *FolderHandler) Get(ctx *gin.Context) {
	user := api.User(ctx)
	folder, err := h.acl.RequireFolderAccess(ctx.Request.Context(), user, ctx.Param("id"), acl.AccessRead)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	admin := h.acl.FolderAccess(user, folder).Has(acl.AccessAdmin)
	ctx.PureJSON(http.StatusOK, newFolderResponse(folder, admin))
}

// Files lists every readable file below a folder by its relative path
func (h *FolderHandler) Files(ctx *gin.Context) {
	user := api.User(ctx)
	root, err := h.acl.RequireFolderAccess(ctx.Request.Context(), user, ctx.Param("id"), acl.AccessRead)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}
	admin := h.acl.FolderAccess(user, root).Has(acl.AccessAdmin)

	entries, err := h.store.ListFiles(ctx.Request.Context(), root.ID)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	files := make([]*FileResponse, 0, len(entries))
	for _, e := range entries {
		owner := &tree.Folder{ID: e.FolderID, CreatorID: e.FolderCreator, Public: e.FolderPublic}
		if !h.acl.CanRead(user, owner) {
			continue
		}
		files = append(files, newFileResponse(e, admin))
	}

	ctx.PureJSON(http.StatusOK, &ListFilesResponse{Files: files})
}
