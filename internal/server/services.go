package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/openmined/syncfolders/internal/server/acl"
	"github.com/openmined/syncfolders/internal/server/assetstore"
	"github.com/openmined/syncfolders/internal/server/auth"
	"github.com/openmined/syncfolders/internal/server/events"
	"github.com/openmined/syncfolders/internal/server/progress"
	"github.com/openmined/syncfolders/internal/server/settings"
	"github.com/openmined/syncfolders/internal/server/synclog"
	"github.com/openmined/syncfolders/internal/server/syncsvc"
	"github.com/openmined/syncfolders/internal/server/tree"
)

type Services struct {
	Tree       *tree.Store
	ACL        *acl.ACLService
	Auth       *auth.AuthService
	Assetstore *assetstore.AssetstoreService
	Settings   *settings.SettingsService
	Events     *events.Bus
	Progress   *progress.Tracker
	Sync       *syncsvc.Service
	History    *synclog.SyncLogger

	config *Config
}

func NewServices(config *Config, db *sqlx.DB) (*Services, error) {
	treeStore, err := tree.NewStore(db)
	if err != nil {
		return nil, err
	}

	assetstoreSvc, err := assetstore.NewAssetstoreService(db)
	if err != nil {
		return nil, err
	}

	settingsSvc, err := settings.NewSettingsService(db)
	if err != nil {
		return nil, err
	}
	settings.RegisterDefaults(settingsSvc, config.Sync.ChecksumSizeLimit)

	authSvc := auth.NewAuthService(&config.Auth)
	aclSvc := acl.NewACLService(treeStore, authSvc)

	bus := events.NewBus()
	tracker := progress.NewTracker(bus, config.Progress.TTL)

	syncSvc, err := syncsvc.NewService(&config.Sync, treeStore, aclSvc, assetstoreSvc, settingsSvc, bus, tracker)
	if err != nil {
		return nil, fmt.Errorf("create sync service: %w", err)
	}

	history, err := synclog.New(config.HistoryDir(), slog.Default())
	if err != nil {
		return nil, fmt.Errorf("create sync history: %w", err)
	}
	syncSvc.SetRecorder(history)

	return &Services{
		Tree:       treeStore,
		ACL:        aclSvc,
		Auth:       authSvc,
		Assetstore: assetstoreSvc,
		Settings:   settingsSvc,
		Events:     bus,
		Progress:   tracker,
		Sync:       syncSvc,
		History:    history,
		config:     config,
	}, nil
}

func (s *Services) Start(ctx context.Context) error {
	// the default assetstore must exist before any import
	store, err := s.Assetstore.EnsureDefault(ctx, filepath.Join(s.config.DataDir, "assets"))
	if err != nil {
		return fmt.Errorf("start assetstore service: %w", err)
	}
	slog.Info("assetstore ready", "id", store.ID, "name", store.Name, "type", store.Type)

	if err := s.importSettings(ctx); err != nil {
		return fmt.Errorf("start settings service: %w", err)
	}
	return nil
}

func (s *Services) Shutdown(ctx context.Context) error {
	s.Events.Close()
	return s.History.Close()
}

// importSettings seeds settings from an optional settings.yaml in the data dir
func (s *Services) importSettings(ctx context.Context) error {
	path := s.config.SettingsPath()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.Settings.ImportYAML(ctx, f); err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	slog.Info("settings imported", "path", path)
	return nil
}
