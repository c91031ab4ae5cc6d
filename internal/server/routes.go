package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/server/handlers/assetstore"
	"github.com/openmined/syncfolders/internal/server/handlers/folder"
	"github.com/openmined/syncfolders/internal/server/handlers/importer"
	"github.com/openmined/syncfolders/internal/server/handlers/notification"
	"github.com/openmined/syncfolders/internal/server/handlers/settings"
	"github.com/openmined/syncfolders/internal/server/handlers/system"
	"github.com/openmined/syncfolders/internal/server/middlewares"
	"github.com/openmined/syncfolders/internal/version"
)

func SetupRoutes(config *Config, svc *Services) http.Handler {
	r := gin.New()

	importH := importer.New(svc.Sync, svc.History)
	assetstoreH := assetstore.New(svc.Assetstore)
	folderH := folder.New(svc.Tree, svc.ACL)
	settingsH := settings.New(svc.Settings, svc.Auth)
	notifyH := notification.New(svc.Events, svc.Progress)
	systemH := system.New(config.DataDir, svc.Auth)

	r.Use(middlewares.Logger())
	r.Use(gin.Recovery())
	r.Use(middlewares.GZIP())
	r.Use(middlewares.CORS())
	r.Use(middlewares.SecurityHeaders())
	if config.HTTP.CertFile != "" {
		r.Use(middlewares.HSTS())
	}

	r.GET("/", IndexHandler)
	r.GET("/healthz", HealthHandler)

	rate := config.HTTP.RateLimit
	if rate == "" {
		rate = DefaultImportRate
	}

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.JWTAuth(svc.Auth))
	{
		// assetstores
		v1.GET("/assetstore", assetstoreH.List)
		v1.POST("/assetstore/:id/import", middlewares.RateLimiter(rate), importH.Import)
		v1.GET("/sync/history", importH.History)

		// folders
		v1.POST("/folder", folderH.Create)
		v1.GET("/folder", folderH.List)
		v1.GET("/folder/:id", folderH.Get)
		v1.GET("/folder/:id/files", folderH.Files)

		// settings
		v1.GET("/system/setting", settingsH.Get)
		v1.PUT("/system/setting", settingsH.Set)
		v1.GET("/system/status", systemH.Status)

		// notifications
		v1.GET("/notification/progress/:id", notifyH.Progress)
		v1.GET("/notification/stream", notifyH.Stream)
	}

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, api.APIError{
			Code:    api.CodeInvalidRequest,
			Message: "not found",
		})
	})

	r.NoMethod(func(c *gin.Context) {
		c.PureJSON(http.StatusMethodNotAllowed, api.APIError{
			Code:    api.CodeInvalidRequest,
			Message: "method not allowed",
		})
	})

	return r.Handler()
}

func IndexHandler(ctx *gin.Context) {
	ctx.String(http.StatusOK, version.DetailedWithApp())
}

func HealthHandler(ctx *gin.Context) {
	ctx.PureJSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
