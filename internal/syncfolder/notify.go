package syncfolder

const (
	EventAssetstoreImported = "filesystem_assetstore_imported"
)

type Notifier interface {
	Notify(event string, payload any)
}

// ImportedPayload is sent with EventAssetstoreImported for every created item
type ImportedPayload struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	ImportPath string `json:"importPath"`
}

// Progress receives advisory messages while a session runs
type Progress interface {
	Update(message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

type nopProgress struct{}

func (nopProgress) Update(string) {}

var (
	NopNotifier Notifier = nopNotifier{}
	NopProgress Progress = nopProgress{}
)
