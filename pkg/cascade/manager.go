// Package cascade implements the folder lifecycle: deleting or restoring a
// folder applies to its whole subtree and every note inside it, as one
// transaction.
package cascade

import (
	"context"
	"errors"
	"time"

	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/internal/tree"

	"github.com/google/uuid"
)

// ErrFolderNotFound is returned when the target folder does not exist or
// belongs to another user. The two cases are deliberately
// indistinguishable.
var ErrFolderNotFound = errors.New("folder not found")

type Manager struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewManager(uowFactory unitofwork.RepositoryFactory) *Manager {
	return &Manager{
		uowFactory: uowFactory,
	}
}

// resolveSubtree loads the target folder through the transaction's
// repositories and expands it to the full id set: target plus descendants.
func (m *Manager) resolveSubtree(ctx context.Context, uow unitofwork.UnitOfWork, userId, folderId uuid.UUID) ([]uuid.UUID, error) {
	folderRepo := uow.FolderRepository()

	target, err := folderRepo.FindOne(ctx,
		specification.ByID{ID: folderId},
		specification.UserOwnedBy{UserID: userId},
		specification.WithDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrFolderNotFound
	}

	descendants, err := tree.NewResolver(folderRepo).Descendants(ctx, userId, folderId)
	if err != nil {
		return nil, err
	}

	return append(descendants, folderId), nil
}

// DeleteFolder deletes a folder, its descendant folders and every note they
// contain. hard=false sets tombstones and refreshes updated_at so the
// deletion propagates through pull; hard=true removes the rows for good.
func (m *Manager) DeleteFolder(ctx context.Context, userId, folderId uuid.UUID, hard bool) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	allFolders, err := m.resolveSubtree(ctx, uow, userId, folderId)
	if err != nil {
		return err
	}

	// Notes first, then folders. Order matters for the hard path: no note
	// may be left pointing at a folder that is already gone.
	now := time.Now().UTC()
	if hard {
		if err := uow.NoteRepository().HardDeleteByFolderIds(ctx, userId, allFolders); err != nil {
			return err
		}
		if err := uow.FolderRepository().HardDeleteByIds(ctx, userId, allFolders); err != nil {
			return err
		}
	} else {
		if err := uow.NoteRepository().SoftDeleteByFolderIds(ctx, userId, allFolders, now); err != nil {
			return err
		}
		if err := uow.FolderRepository().SoftDeleteByIds(ctx, userId, allFolders, now); err != nil {
			return err
		}
	}

	return uow.Commit()
}

// RestoreFolder clears the tombstone on the folder, every descendant folder
// and every note they contain. Restore is unconditional across the subtree:
// descendants deleted on their own, even after the ancestor, come back too.
func (m *Manager) RestoreFolder(ctx context.Context, userId, folderId uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	allFolders, err := m.resolveSubtree(ctx, uow, userId, folderId)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uow.FolderRepository().RestoreByIds(ctx, userId, allFolders, now); err != nil {
		return err
	}
	if err := uow.NoteRepository().RestoreByFolderIds(ctx, userId, allFolders, now); err != nil {
		return err
	}

	return uow.Commit()
}

// DeleteAllNotes removes every note the user owns, tombstoned ones included.
func (m *Manager) DeleteAllNotes(ctx context.Context, userId uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}

	return uow.Commit()
}

// DeleteAllFolders removes every folder the user owns, tombstoned ones
// included. Notes that live inside a folder go first so none is left
// pointing at a missing parent; notes at the root are untouched.
func (m *Manager) DeleteAllFolders(ctx context.Context, userId uuid.UUID) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().HardDeleteInFoldersByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.FolderRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}

	return uow.Commit()
}

