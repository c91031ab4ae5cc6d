package importer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/server/synclog"
	"github.com/openmined/syncfolders/internal/server/syncsvc"
	"github.com/openmined/syncfolders/internal/syncfolder"
)

type Syncer interface {
	Sync(ctx context.Context, params *syncsvc.SyncParams) (*syncfolder.Result, error)
}

// HistoryReader lists a user's most recent sync sessions
type HistoryReader interface {
	History(user string, limit int) ([]*synclog.Entry, error)
}

type ImporterHandler struct {
	svc     Syncer
	history HistoryReader
}

func New(svc Syncer, history HistoryReader) *ImporterHandler {
	return &ImporterHandler{
		svc:     svc,
		history: history,
	}
}

// Import runs a sync session from a host directory into a folder. The
// request blocks until the session finishes.
func (h *ImporterHandler) Import(ctx *gin.Context) {
	var req ImportRequest
	if err := ctx.ShouldBind(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	if req.DataType != DataTypeSyncFolder {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest,
			fmt.Errorf("unsupported dataType %q", req.DataType))
		return
	}

	result, err := h.svc.Sync(ctx.Request.Context(), &syncsvc.SyncParams{
		AssetstoreID:    ctx.Param("id"),
		User:            api.User(ctx),
		DestinationID:   req.DestinationID,
		DestinationType: req.DestinationType,
		ImportPath:      req.ImportPath,
		Progress:        req.Progress,
	})
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, result)
}

// History returns the caller's recent sync sessions, oldest first
func (h *ImporterHandler) History(ctx *gin.Context) {
	var req HistoryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = DefaultHistoryLimit
	}

	entries := []*synclog.Entry{}
	if h.history != nil {
		var err error
		entries, err = h.history.History(api.User(ctx), req.Limit)
		if err != nil {
			api.AbortWithError(ctx, http.StatusInternalServerError, api.CodeInternalError, err)
			return
		}
	}

	ctx.PureJSON(http.StatusOK, &HistoryResponse{Sessions: entries})
}
