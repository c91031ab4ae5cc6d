package syncsdk

import "time"

type Config struct {
	ServerURL string
	// User is sent as the user query param when the server runs without auth
	User string
	// Token is a bearer access token issued by the server
	Token string
}

type Assetstore struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Root    string `json:"root"`
	Created string `json:"created"`
}

type ImportParams struct {
	AssetstoreID    string `json:"-"`
	DataType        string `json:"dataType"`
	DestinationID   string `json:"destinationId"`
	DestinationType string `json:"destinationType"`
	ImportPath      string `json:"importPath"`
	Progress        bool   `json:"progress"`
}

type ImportResult struct {
	RootID     string            `json:"rootId"`
	ImportPath string            `json:"importPath"`
	HostFiles  int               `json:"hostFiles"`
	Moved      int               `json:"moved"`
	Created    int               `json:"created"`
	Deleted    int               `json:"deleted"`
	Unchanged  int               `json:"unchanged"`
	Pruned     int               `json:"pruned"`
	Duration   time.Duration     `json:"duration"`
	Phases     map[string]string `json:"phases"`
}

func (r *ImportResult) Changed() bool {
	return r.Moved+r.Created+r.Deleted+r.Pruned > 0
}

type CreateFolderParams struct {
	ParentID string `json:"parentId,omitempty"`
	Name     string `json:"name"`
	Public   bool   `json:"public"`
}

type ListFoldersParams struct {
	ParentID string
	Name     string
}

type Folder struct {
	ID           string         `json:"id"`
	ParentID     string         `json:"parentId,omitempty"`
	Name         string         `json:"name"`
	CreatorID    string         `json:"creatorId"`
	Public       bool           `json:"public"`
	Size         int64          `json:"size"`
	Created      string         `json:"created"`
	Updated      string         `json:"updated"`
	IsSyncFolder *bool          `json:"isSyncFolder,omitempty"`
	SyncPath     string         `json:"syncPath,omitempty"`
	AssetstoreID string         `json:"assetstoreId,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

type File struct {
	ID           string `json:"id"`
	ItemID       string `json:"itemId"`
	Name         string `json:"name"`
	RelPath      string `json:"relPath"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	MTime        string `json:"mtime"`
	Imported     bool   `json:"imported"`
	Path         string `json:"path,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	AssetstoreID string `json:"assetstoreId,omitempty"`
}

type SyncSession struct {
	Timestamp     time.Time `json:"timestamp"`
	User          string    `json:"user"`
	AssetstoreID  string    `json:"assetstoreId"`
	DestinationID string    `json:"destinationId"`
	ImportPath    string    `json:"importPath"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	HostFiles     int       `json:"hostFiles"`
	Moved         int       `json:"moved"`
	Created       int       `json:"created"`
	Deleted       int       `json:"deleted"`
	Unchanged     int       `json:"unchanged"`
	Pruned        int       `json:"pruned"`
	DurationMs    int64     `json:"durationMs"`
}

type ProgressRecord struct {
	ID      string    `json:"id"`
	User    string    `json:"user"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	State   string    `json:"state"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Event is a notification received on the event stream. Data is decoded
// lazily since its shape depends on Type.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	User string    `json:"user,omitempty"`
	Data rawJSON   `json:"data"`
	Time time.Time `json:"time"`
}

// DecodeData unmarshals the event payload into v
func (e *Event) DecodeData(v any) error {
	return jsonUnmarshal(e.Data, v)
}

type rawJSON []byte

func (r *rawJSON) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

type ServerStatus struct {
	Version   string    `json:"version"`
	Revision  string    `json:"revision"`
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`
	Process   *struct {
		PID        int32   `json:"pid"`
		CPUPercent float64 `json:"cpuPercent"`
		NumThreads int32   `json:"numThreads"`
		RSS        uint64  `json:"rss"`
	} `json:"process,omitempty"`
	Disk *struct {
		Path        string  `json:"path"`
		Total       uint64  `json:"total"`
		Free        uint64  `json:"free"`
		UsedPercent float64 `json:"usedPercent"`
	} `json:"disk,omitempty"`
}
