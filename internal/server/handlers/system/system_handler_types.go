package system

import "time"

type StatusResponse struct {
	Version   string        `json:"version"`
	Revision  string        `json:"revision"`
	StartedAt time.Time     `json:"startedAt"`
	Uptime    string        `json:"uptime"`
	Process   *ProcessStats `json:"process,omitempty"`
	Disk      *DiskStats    `json:"disk,omitempty"`
}

type ProcessStats struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpuPercent"`
	NumThreads int32   `json:"numThreads"`
	RSS        uint64  `json:"rss"`
	RSSHuman   string  `json:"rssHuman"`
}

// DiskStats describes the volume holding the data dir
type DiskStats struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	FreeHuman   string  `json:"freeHuman"`
	UsedPercent float64 `json:"usedPercent"`
}
