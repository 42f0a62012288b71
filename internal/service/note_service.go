// FILE: internal/service/note_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) (*dto.MoveNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error
	Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

// findOwned loads a live note by id, scoped to the caller.
func (c *noteService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID, withDeleted bool) (*entity.Note, error) {
	specs := []specification.Specification{
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	}
	if withDeleted {
		specs = append(specs, specification.WithDeleted{})
	}
	return uow.NoteRepository().FindOne(ctx, specs...)
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if req.FolderId != nil {
		folder, err := uow.FolderRepository().FindOne(ctx,
			specification.ByID{ID: *req.FolderId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, fmt.Errorf("%w: folder", ErrNotFound)
		}
	}

	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		FolderId:  req.FolderId,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	c.notifyNoteChange(ctx, userId)

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwned(ctx, uow, userId, id, false)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: note", ErrNotFound)
	}

	return &dto.ShowNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		FolderId:  note.FolderId,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwned(ctx, uow, userId, req.Id, false)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: note", ErrNotFound)
	}

	now := time.Now().UTC()
	note.Title = req.Title
	note.Content = req.Content
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	c.notifyNoteChange(ctx, userId)

	return &dto.UpdateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) (*dto.MoveNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwned(ctx, uow, userId, req.Id, false)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("%w: note", ErrNotFound)
	}

	if req.FolderId != nil {
		folder, err := uow.FolderRepository().FindOne(ctx,
			specification.ByID{ID: *req.FolderId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, fmt.Errorf("%w: folder", ErrNotFound)
		}
	}

	now := time.Now().UTC()
	note.FolderId = req.FolderId
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	c.notifyNoteChange(ctx, userId)

	return &dto.MoveNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwned(ctx, uow, userId, id, true)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("%w: note", ErrNotFound)
	}

	if permanent {
		err = uow.NoteRepository().HardDelete(ctx, note.Id)
	} else {
		err = uow.NoteRepository().SoftDelete(ctx, note.Id, time.Now().UTC())
	}
	if err != nil {
		return err
	}

	c.notifyNoteChange(ctx, userId)
	return nil
}

func (c *noteService) Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwned(ctx, uow, userId, id, true)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("%w: note", ErrNotFound)
	}

	if err := uow.NoteRepository().Restore(ctx, note.Id, time.Now().UTC()); err != nil {
		return err
	}

	c.notifyNoteChange(ctx, userId)
	return nil
}

func (c *noteService) notifyNoteChange(ctx context.Context, userId uuid.UUID) {
	msg := dto.SyncChangedMessage{UserId: userId, Kinds: []string{"notes"}}
	msgJson, _ := json.Marshal(msg)
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish sync change notice: %v\n", err)
	}
}
