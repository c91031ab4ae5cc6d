package settings

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/server/settings"
)

type AdminChecker interface {
	IsAdmin(user string) bool
}

type SettingsHandler struct {
	svc    *settings.SettingsService
	admins AdminChecker
}

func New(svc *settings.SettingsService, admins AdminChecker) *SettingsHandler {
	return &SettingsHandler{
		svc:    svc,
		admins: admins,
	}
}

// Get reads one setting with `key`, or several with `list`, a JSON array of
// keys
func (h *SettingsHandler) Get(ctx *gin.Context) {
	if !h.requireAdmin(ctx) {
		return
	}

	if list := formValue(ctx, "list"); list != "" {
		var keys []string
		if err := decode(list, &keys); err != nil {
			api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("list must be a JSON array of keys: %w", err))
			return
		}
		values, err := h.svc.GetMany(ctx.Request.Context(), keys)
		if err != nil {
			api.AbortWithServiceError(ctx, err)
			return
		}
		ctx.PureJSON(http.StatusOK, values)
		return
	}

	key := formValue(ctx, "key")
	if key == "" {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, errors.New("either key or list is required"))
		return
	}
	value, err := h.svc.Get(ctx.Request.Context(), key)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, value)
}

// Set writes settings. Nothing is written unless every value is valid.
func (h *SettingsHandler) Set(ctx *gin.Context) {
	if !h.requireAdmin(ctx) {
		return
	}

	req, err := parseSetRequest(ctx)
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, err)
		return
	}

	values := make(map[string]any, len(req.List)+1)
	for _, e := range req.List {
		values[e.Key] = e.Value
	}
	if req.Key != "" {
		values[req.Key] = req.Value
	}
	if len(values) == 0 {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, errors.New("either key or list is required"))
		return
	}

	if err := h.svc.SetMany(ctx.Request.Context(), values); err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	updated, err := h.svc.GetMany(ctx.Request.Context(), keys)
	if err != nil {
		api.AbortWithServiceError(ctx, err)
		return
	}
	ctx.PureJSON(http.StatusOK, updated)
}

func (h *SettingsHandler) requireAdmin(ctx *gin.Context) bool {
	user := api.User(ctx)
	if h.admins == nil || !h.admins.IsAdmin(user) {
		api.AbortWithError(ctx, http.StatusForbidden, api.CodeAccessDenied, fmt.Errorf("%s is not a site admin", user))
		return false
	}
	return true
}

func parseSetRequest(ctx *gin.Context) (*SetSettingsRequest, error) {
	var req SetSettingsRequest
	if strings.HasPrefix(ctx.ContentType(), gin.MIMEJSON) {
		body, err := ctx.GetRawData()
		if err != nil {
			return nil, err
		}
		if err := decode(string(body), &req); err != nil {
			return nil, fmt.Errorf("invalid body: %w", err)
		}
		return &req, nil
	}

	if list := formValue(ctx, "list"); list != "" {
		if err := decode(list, &req.List); err != nil {
			return nil, fmt.Errorf("list must be a JSON array of {key, value}: %w", err)
		}
	}
	req.Key = formValue(ctx, "key")
	if req.Key != "" {
		req.Value = formValue(ctx, "value")
	}
	return &req, nil
}

// decode keeps numbers as json.Number so integer settings survive intact
func decode(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func formValue(ctx *gin.Context, name string) string {
	if v, ok := ctx.GetPostForm(name); ok {
		return v
	}
	return ctx.Query(name)
}
