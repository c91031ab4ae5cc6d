package syncsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openmined/syncfolders/internal/server/acl"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/openmined/syncfolders/internal/server/events"
	"github.com/openmined/syncfolders/internal/server/locker"
	"github.com/openmined/syncfolders/internal/server/progress"
	"github.com/openmined/syncfolders/internal/server/settings"
	"github.com/openmined/syncfolders/internal/server/synclog"
	"github.com/openmined/syncfolders/internal/server/tree"
	"github.com/openmined/syncfolders/internal/syncfolder"
)

const DestinationFolder = "folder"

type SyncParams struct {
	AssetstoreID    string
	User            string
	DestinationID   string
	DestinationType string
	ImportPath      string
	// Progress publishes a "Syncing Folder" record while the session runs
	Progress bool
}

// Service validates sync requests and runs them one at a time per
// destination folder
type Service struct {
	config      *Config
	store       *tree.Store
	acl         *acl.ACLService
	assetstores *assetstore.AssetstoreService
	settings    *settings.SettingsService
	bus         *events.Bus
	tracker     *progress.Tracker
	locks       *locker.Locker
	ignore      *syncfolder.IgnoreList
	history     Recorder
}

// Recorder keeps the history of finished sync sessions
type Recorder interface {
	Record(entry *synclog.Entry)
}

func NewService(
	config *Config,
	store *tree.Store,
	aclSvc *acl.ACLService,
	assetstores *assetstore.AssetstoreService,
	settingsSvc *settings.SettingsService,
	bus *events.Bus,
	tracker *progress.Tracker,
) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	locks, err := locker.New(config.LockDir)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:      config,
		store:       store,
		acl:         aclSvc,
		assetstores: assetstores,
		settings:    settingsSvc,
		bus:         bus,
		tracker:     tracker,
		locks:       locks,
		ignore:      syncfolder.NewIgnoreList(config.Exclude...),
	}, nil
}

// SetRecorder enables session history. Only validated sessions are recorded.
func (s *Service) SetRecorder(r Recorder) {
	s.history = r
}

// Sync mirrors params.ImportPath into the destination folder
func (s *Service) Sync(ctx context.Context, params *SyncParams) (*syncfolder.Result, error) {
	store, err := s.validate(ctx, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.run(ctx, store, params)
	s.record(params, store, result, err, time.Since(start))
	return result, err
}

func (s *Service) run(ctx context.Context, store *assetstore.Assetstore, params *SyncParams) (*syncfolder.Result, error) {
	unlock, err := s.locks.Lock(ctx, "folder-"+params.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock destination: %w", err)
	}
	defer unlock()

	limit, err := s.settings.GetInt(ctx, settings.KeyChecksumSizeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read checksum size limit: %w", err)
	}

	var pc *progress.Context
	var sink syncfolder.Progress = syncfolder.NopProgress
	if params.Progress && s.tracker != nil {
		pc = s.tracker.Start(params.User, progress.SyncingTitle)
		sink = pc
	}

	var notifier syncfolder.Notifier = syncfolder.NopNotifier
	if s.bus != nil {
		notifier = s.bus.ForUser(params.User)
	}

	importer := syncfolder.NewImporter(
		tree.NewBackend(s.store, s.acl.CanRead),
		syncfolder.WithNotifier(notifier),
		syncfolder.WithWorkers(s.config.Workers),
		syncfolder.WithIgnoreList(s.ignore),
		syncfolder.WithLogger(slog.Default().With("user", params.User, "assetstore", store.ID)),
	)

	result, err := importer.Import(ctx, &syncfolder.ImportParams{
		RootID:            params.DestinationID,
		ImportPath:        params.ImportPath,
		User:              params.User,
		AssetstoreID:      store.ID,
		ChecksumSizeLimit: limit,
		Progress:          sink,
	})
	if pc != nil {
		pc.Done(err)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) record(params *SyncParams, store *assetstore.Assetstore, result *syncfolder.Result, err error, elapsed time.Duration) {
	if s.history == nil {
		return
	}

	entry := &synclog.Entry{
		User:          params.User,
		AssetstoreID:  store.ID,
		DestinationID: params.DestinationID,
		ImportPath:    params.ImportPath,
		Status:        synclog.StatusSuccess,
		DurationMs:    elapsed.Milliseconds(),
	}
	if err != nil {
		entry.Status = synclog.StatusFailed
		entry.Error = err.Error()
	}
	if result != nil {
		entry.HostFiles = result.HostFiles
		entry.Moved = result.Moved
		entry.Created = result.Created
		entry.Deleted = result.Deleted
		entry.Unchanged = result.Unchanged
		entry.Pruned = result.Pruned
	}
	s.history.Record(entry)
}

func (s *Service) validate(ctx context.Context, params *SyncParams) (*assetstore.Assetstore, error) {
	if params.DestinationType != DestinationFolder {
		return nil, syncfolder.NewValidationError("destinationType", "the destination type must be \"folder\", got %q", params.DestinationType)
	}
	if params.DestinationID == "" {
		return nil, syncfolder.NewValidationError("destinationId", "destination is required")
	}
	if params.ImportPath == "" || !filepath.IsAbs(params.ImportPath) {
		return nil, syncfolder.NewValidationError("importPath", "import path must be absolute: %q", params.ImportPath)
	}

	info, err := os.Stat(params.ImportPath)
	if err != nil || !info.IsDir() {
		return nil, syncfolder.NewValidationError("importPath", "not a directory: %s", params.ImportPath)
	}

	store, err := s.assetstores.Get(ctx, params.AssetstoreID)
	if errors.Is(err, assetstore.ErrAssetstoreNotFound) {
		return nil, syncfolder.NewValidationError("id", "assetstore not found: %s", params.AssetstoreID)
	}
	if err != nil {
		return nil, err
	}
	if store.Type != assetstore.TypeFilesystem {
		return nil, syncfolder.NewValidationError("id", "assetstore %s cannot import from the filesystem", store.Name)
	}

	_, err = s.acl.RequireFolderAccess(ctx, params.User, params.DestinationID, acl.AccessAdmin)
	if errors.Is(err, tree.ErrFolderNotFound) {
		return nil, &syncfolder.NotFoundError{Kind: "folder", Path: params.DestinationID}
	}
	if err != nil {
		return nil, err
	}

	return store, nil
}
