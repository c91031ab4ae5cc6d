package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openmined/syncfolders/internal/server/tree"
)

var ErrAccessDenied = errors.New("access denied")

type FolderGetter interface {
	GetFolder(ctx context.Context, id string) (*tree.Folder, error)
}

type AdminChecker interface {
	IsAdmin(user string) bool
}

// ACLService decides what a user may do with a folder. The creator of a
// folder and site admins hold every level, anyone may read a public folder.
type ACLService struct {
	folders FolderGetter
	admins  AdminChecker
}

func NewACLService(folders FolderGetter, admins AdminChecker) *ACLService {
	return &ACLService{
		folders: folders,
		admins:  admins,
	}
}

func (s *ACLService) FolderAccess(user string, folder *tree.Folder) AccessLevel {
	if user != "" && (folder.CreatorID == user || s.isAdmin(user)) {
		return AccessAll
	}
	if folder.Public {
		return AccessRead
	}
	return AccessNone
}

// CanRead matches tree.ReadFilter
func (s *ACLService) CanRead(user string, folder *tree.Folder) bool {
	return s.FolderAccess(user, folder).Has(AccessRead)
}

// RequireFolderAccess loads a folder and fails with ErrAccessDenied unless
// user holds level on it
func (s *ACLService) RequireFolderAccess(ctx context.Context, user, folderID string, level AccessLevel) (*tree.Folder, error) {
	folder, err := s.folders.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	granted := s.FolderAccess(user, folder)
	if !granted.Has(level) {
		slog.Debug("acl denied", "user", user, "folder", folderID, "want", level, "have", granted)
		return nil, fmt.Errorf("%w: %s needs %s on folder %s", ErrAccessDenied, user, level, folderID)
	}
	return folder, nil
}

func (s *ACLService) isAdmin(user string) bool {
	return s.admins != nil && s.admins.IsAdmin(user)
}
