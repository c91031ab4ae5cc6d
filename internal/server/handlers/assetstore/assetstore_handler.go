package assetstore

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
)

type AssetstoreHandler struct {
	svc *assetstore.AssetstoreService
}

func New(svc *assetstore.AssetstoreService) *AssetstoreHandler {
	return &AssetstoreHandler{
		svc: svc,
	}
}

func (h *AssetstoreHandler) List(ctx *gin.Context) {
	stores, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	ctx.PureJSON(http.StatusOK, gin.H{
		"assetstores": stores,
	})
}
