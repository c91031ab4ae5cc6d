package system

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/openmined/syncfolders/internal/server/handlers/api"
	"github.com/openmined/syncfolders/internal/version"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/process"
)

type AdminChecker interface {
	IsAdmin(user string) bool
}

type SystemHandler struct {
	dataDir   string
	admins    AdminChecker
	startedAt time.Time
}

func New(dataDir string, admins AdminChecker) *SystemHandler {
	return &SystemHandler{
		dataDir:   dataDir,
		admins:    admins,
		startedAt: time.Now(),
	}
}

// Status reports the server version and host resource usage to site admins.
// Stats that cannot be read are left out.
func (h *SystemHandler) Status(ctx *gin.Context) {
	user := api.User(ctx)
	if h.admins == nil || !h.admins.IsAdmin(user) {
		api.AbortWithError(ctx, http.StatusForbidden, api.CodeAccessDenied, fmt.Errorf("%s is not a site admin", user))
		return
	}

	reqCtx := ctx.Request.Context()
	res := &StatusResponse{
		Version:   version.Version,
		Revision:  version.Revision,
		StartedAt: h.startedAt.UTC(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	}

	if stats, err := processStats(reqCtx); err != nil {
		slog.Warn("system status process stats", "error", err)
	} else {
		res.Process = stats
	}

	if stats, err := diskStats(reqCtx, h.dataDir); err != nil {
		slog.Warn("system status disk stats", "path", h.dataDir, "error", err)
	} else {
		res.Disk = stats
	}

	ctx.PureJSON(http.StatusOK, res)
}

func processStats(ctx context.Context) (*ProcessStats, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, err
	}

	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory info: %w", err)
	}

	stats := &ProcessStats{
		PID:      p.Pid,
		RSS:      mem.RSS,
		RSSHuman: humanize.Bytes(mem.RSS),
	}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		stats.NumThreads = n
	}
	return stats, nil
}

func diskStats(ctx context.Context, path string) (*DiskStats, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, err
	}
	return &DiskStats{
		Path:        usage.Path,
		Total:       usage.Total,
		Free:        usage.Free,
		FreeHuman:   humanize.Bytes(usage.Free),
		UsedPercent: usage.UsedPercent,
	}, nil
}
