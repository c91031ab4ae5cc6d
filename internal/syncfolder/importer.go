package syncfolder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Importer runs sync sessions against a destination backend. Callers must
// serialize sessions that target the same root.
type Importer struct {
	backend    Backend
	notifier   Notifier
	detectMime MimeDetector
	workers    int
	ignore     *IgnoreList
	logger     *slog.Logger
}

type ImporterOption func(*Importer)

func WithNotifier(n Notifier) ImporterOption {
	return func(i *Importer) {
		i.notifier = n
	}
}

func WithMimeDetector(fn MimeDetector) ImporterOption {
	return func(i *Importer) {
		i.detectMime = fn
	}
}

func WithWorkers(n int) ImporterOption {
	return func(i *Importer) {
		i.workers = n
	}
}

func WithIgnoreList(l *IgnoreList) ImporterOption {
	return func(i *Importer) {
		i.ignore = l
	}
}

func WithLogger(l *slog.Logger) ImporterOption {
	return func(i *Importer) {
		i.logger = l
	}
}

func NewImporter(backend Backend, opts ...ImporterOption) *Importer {
	imp := &Importer{
		backend:    backend,
		notifier:   NopNotifier,
		detectMime: DetectMime,
	}
	for _, opt := range opts {
		opt(imp)
	}
	if imp.logger == nil {
		imp.logger = slog.Default()
	}
	return imp
}

type ImportParams struct {
	RootID       string
	ImportPath   string
	User         string
	AssetstoreID string
	// ChecksumSizeLimit is the digested prefix in MiB; <= 0 digests whole files
	ChecksumSizeLimit int64
	Progress          Progress
}

func (p *ImportParams) validate() error {
	if p.RootID == "" {
		return NewValidationError("destinationId", "destination is required")
	}
	if p.ImportPath == "" {
		return NewValidationError("importPath", "import path is required")
	}
	if !filepath.IsAbs(p.ImportPath) {
		return NewValidationError("importPath", "import path must be absolute: %s", p.ImportPath)
	}
	return nil
}

type Result struct {
	RootID     string           `json:"rootId"`
	ImportPath string           `json:"importPath"`
	HostFiles  int              `json:"hostFiles"`
	Moved      int              `json:"moved"`
	Created    int              `json:"created"`
	Deleted    int              `json:"deleted"`
	Unchanged  int              `json:"unchanged"`
	Pruned     int              `json:"pruned"`
	Duration   time.Duration    `json:"duration"`
	Phases     map[State]string `json:"phases"`
}

// Changed reports whether the run mutated the destination tree
func (r *Result) Changed() bool {
	return r.Moved+r.Created+r.Deleted+r.Pruned > 0
}

// Import mirrors the host directory at params.ImportPath into the folder
// params.RootID. Mutations applied before a failure are kept; a later run
// converges since both sides are rescanned from scratch.
func (i *Importer) Import(ctx context.Context, params *ImportParams) (*Result, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	progress := params.Progress
	if progress == nil {
		progress = NopProgress
	}
	logger := i.logger.With("root", params.RootID, "path", params.ImportPath)
	s := newSession(progress, logger)
	result := &Result{RootID: params.RootID, ImportPath: params.ImportPath}

	if err := s.transition(StateScanningHost); err != nil {
		return nil, err
	}
	current, err := BuildHostSnapshot(ctx, params.ImportPath, &HostOptions{
		MaxDigestBytes: MaxDigestBytes(params.ChecksumSizeLimit),
		Workers:        i.workers,
		Ignore:         i.ignore,
	})
	if err != nil {
		return nil, s.fail(err)
	}
	result.HostFiles = len(current)

	if err := s.transition(StateScanningDestination); err != nil {
		return nil, s.fail(err)
	}
	previous, err := BuildDestinationSnapshot(ctx, i.backend, params.RootID, params.User)
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.transition(StateReconciling); err != nil {
		return nil, s.fail(err)
	}
	ops := Reconcile(current, previous)
	result.Moved = len(ops.Moves)
	result.Created = len(ops.Creates)
	result.Deleted = len(ops.Deletes)
	result.Unchanged = len(ops.Unchanged)
	logger.Info("sync reconcile",
		"moves", result.Moved,
		"creates", result.Created,
		"deletes", result.Deleted,
		"unchanged", result.Unchanged,
	)

	mutator := NewMutator(i.backend, &MutatorConfig{
		RootID:       params.RootID,
		ImportPath:   params.ImportPath,
		User:         params.User,
		AssetstoreID: params.AssetstoreID,
		Notifier:     i.notifier,
		DetectMime:   i.detectMime,
		Logger:       logger,
	})

	if err := s.transition(StateMutating); err != nil {
		return nil, s.fail(err)
	}
	if err := mutator.Apply(ctx, ops.Ops()); err != nil {
		return nil, s.fail(err)
	}

	if err := s.transition(StatePruningEmpty); err != nil {
		return nil, s.fail(err)
	}
	pruned, err := mutator.Prune(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	result.Pruned = pruned

	if err := s.transition(StateFinalizing); err != nil {
		return nil, s.fail(err)
	}
	err = i.backend.SetFolderMetadata(ctx, params.RootID, &SyncMetadata{
		SyncPath:     params.ImportPath,
		AssetstoreID: params.AssetstoreID,
		Meta:         map[string]any{"isSyncFolder": true},
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("set sync metadata: %w", err))
	}

	if err := s.transition(StateDone); err != nil {
		return nil, s.fail(err)
	}

	result.Duration = s.elapsed()
	result.Phases = make(map[State]string, len(s.phases))
	for state, d := range s.phases {
		result.Phases[state] = d.Round(time.Millisecond).String()
	}

	logger.Info("sync done",
		"files", result.HostFiles,
		"pruned", result.Pruned,
		"took", result.Duration.Round(time.Millisecond),
	)
	return result, nil
}
