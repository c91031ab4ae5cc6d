package syncfolder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/openmined/syncfolders/internal/utils"
)

// Mutator applies reconciled operations below a destination root
type Mutator struct {
	backend      Backend
	rootID       string
	importPath   string
	user         string
	assetstoreID string
	notifier     Notifier
	detectMime   MimeDetector
	logger       *slog.Logger
}

type MutatorConfig struct {
	RootID       string
	ImportPath   string
	User         string
	AssetstoreID string
	Notifier     Notifier
	DetectMime   MimeDetector
	Logger       *slog.Logger
}

func NewMutator(backend Backend, cfg *MutatorConfig) *Mutator {
	m := &Mutator{
		backend:      backend,
		rootID:       cfg.RootID,
		importPath:   cfg.ImportPath,
		user:         cfg.User,
		assetstoreID: cfg.AssetstoreID,
		notifier:     cfg.Notifier,
		detectMime:   cfg.DetectMime,
		logger:       cfg.Logger,
	}
	if m.notifier == nil {
		m.notifier = NopNotifier
	}
	if m.detectMime == nil {
		m.detectMime = DetectMime
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Apply runs moves, creates and deletes in that order. Every move source is
// resolved before the first move so swaps and chains see the pre-sync tree.
func (m *Mutator) Apply(ctx context.Context, ops []Op) error {
	var moves, creates, deletes []Op
	for _, op := range ops {
		switch op.Kind {
		case OpMove:
			moves = append(moves, op)
		case OpCreate:
			creates = append(creates, op)
		case OpDelete:
			deletes = append(deletes, op)
		default:
			return fmt.Errorf("unknown op kind %d", op.Kind)
		}
	}

	if err := m.applyMoves(ctx, moves); err != nil {
		return err
	}

	for _, op := range creates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.create(ctx, op); err != nil {
			return err
		}
	}

	for _, op := range deletes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.delete(ctx, op); err != nil {
			return err
		}
	}

	return nil
}

func (m *Mutator) applyMoves(ctx context.Context, moves []Op) error {
	if len(moves) == 0 {
		return nil
	}

	sources := make([]*Item, len(moves))
	sourceIDs := make(map[string]struct{}, len(moves))
	for i, op := range moves {
		item, err := m.resolveItem(ctx, op.From)
		if err != nil {
			return err
		}
		sources[i] = item
		sourceIDs[item.ID] = struct{}{}
	}

	for i, op := range moves {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := sources[i]
		parents, leaf := utils.SplitRel(op.Path)
		folder, err := m.ensureFolders(ctx, parents)
		if err != nil {
			return err
		}

		existing, err := m.backend.FindItem(ctx, folder, leaf)
		if err != nil {
			return fmt.Errorf("find item %q: %w", op.Path, err)
		}
		if existing != nil && existing.ID != item.ID {
			if _, isSource := sourceIDs[existing.ID]; !isSource {
				if err := m.backend.RemoveItem(ctx, existing.ID); err != nil {
					return fmt.Errorf("remove superseded item %q: %w", op.Path, err)
				}
			}
		}

		if err := m.backend.MoveItem(ctx, item.ID, folder, leaf); err != nil {
			return fmt.Errorf("move item %q -> %q: %w", op.From, op.Path, err)
		}

		absPath := m.hostPath(op.Path)
		if _, err := m.backend.UpdateFilePaths(ctx, m.rootID, op.Checksum, absPath); err != nil {
			return fmt.Errorf("update file paths %q: %w", op.Path, err)
		}

		m.logger.Info("sync move", "from", op.From, "to", op.Path)
	}

	return nil
}

func (m *Mutator) create(ctx context.Context, op Op) error {
	absPath := m.hostPath(op.Path)
	info, err := os.Stat(absPath)
	if err != nil {
		return &IOError{Path: absPath, Err: err}
	}

	parents, leaf := utils.SplitRel(op.Path)
	folder, err := m.ensureFolders(ctx, parents)
	if err != nil {
		return err
	}

	item, err := m.backend.CreateItem(ctx, folder, leaf, m.user, true)
	if err != nil {
		return fmt.Errorf("create item %q: %w", op.Path, err)
	}

	_, err = m.backend.CreateOrUpdateFile(ctx, item.ID, &FileMeta{
		Name:         leaf,
		Path:         absPath,
		Checksum:     op.Checksum,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		MimeType:     m.detectMime(absPath),
		AssetstoreID: m.assetstoreID,
		Imported:     true,
	})
	if err != nil {
		return fmt.Errorf("create file %q: %w", op.Path, err)
	}

	m.notifier.Notify(EventAssetstoreImported, &ImportedPayload{
		ID:         item.ID,
		Type:       "item",
		ImportPath: absPath,
	})

	m.logger.Info("sync create", "path", op.Path, "size", humanize.Bytes(uint64(info.Size())))
	return nil
}

func (m *Mutator) delete(ctx context.Context, op Op) error {
	item, err := m.resolveItem(ctx, op.Path)
	if err != nil {
		return err
	}
	if err := m.backend.RemoveItem(ctx, item.ID); err != nil {
		return fmt.Errorf("remove item %q: %w", op.Path, err)
	}
	m.logger.Info("sync delete", "path", op.Path)
	return nil
}

// resolveItem finds the item at a root relative path without creating anything
func (m *Mutator) resolveItem(ctx context.Context, relPath string) (*Item, error) {
	parents, leaf := utils.SplitRel(relPath)
	if leaf == "" {
		return nil, &NotFoundError{Kind: "item", Path: relPath}
	}

	folderID := m.rootID
	for i, name := range parents {
		folder, err := m.backend.FindFolder(ctx, folderID, name)
		if err != nil {
			return nil, fmt.Errorf("find folder %q: %w", name, err)
		}
		if folder == nil {
			return nil, &NotFoundError{Kind: "folder", Path: strings.Join(parents[:i+1], "/")}
		}
		folderID = folder.ID
	}

	item, err := m.backend.FindItem(ctx, folderID, leaf)
	if err != nil {
		return nil, fmt.Errorf("find item %q: %w", relPath, err)
	}
	if item == nil {
		return nil, &NotFoundError{Kind: "item", Path: relPath}
	}
	return item, nil
}

// ensureFolders returns the id of the folder chain below the root, creating
// missing folders along the way
func (m *Mutator) ensureFolders(ctx context.Context, names []string) (string, error) {
	folderID := m.rootID
	for _, name := range names {
		folder, err := m.backend.CreateFolder(ctx, folderID, name, m.user, true)
		if err != nil {
			return "", fmt.Errorf("create folder %q: %w", name, err)
		}
		folderID = folder.ID
	}
	return folderID, nil
}

func (m *Mutator) hostPath(relPath string) string {
	return filepath.Join(m.importPath, filepath.FromSlash(relPath))
}
