package importer

import "github.com/openmined/syncfolders/internal/server/synclog"

const (
	DataTypeSyncFolder  = "syncFolder"
	DefaultHistoryLimit = 20
)

type ImportRequest struct {
	DataType        string `form:"dataType" json:"dataType" binding:"required"`
	DestinationID   string `form:"destinationId" json:"destinationId" binding:"required"`
	DestinationType string `form:"destinationType" json:"destinationType" binding:"required"`
	ImportPath      string `form:"importPath" json:"importPath" binding:"required"`
	Progress        bool   `form:"progress" json:"progress"`
}

type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

type HistoryResponse struct {
	Sessions []*synclog.Entry `json:"sessions"`
}
