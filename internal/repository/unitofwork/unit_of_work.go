package unitofwork

import (
	"context"

	"graphnode-be/internal/repository/contract"
)

// UnitOfWork threads one logical transaction through every repository it
// hands out. Push batches and cascade delete/restore commit or roll back as
// a whole through this boundary; it is the only concurrency-control
// primitive the sync core takes.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	NoteRepository() contract.NoteRepository
	FolderRepository() contract.FolderRepository
	SyncDeviceRepository() contract.SyncDeviceRepository
}
