// FILE: internal/service/folder_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/internal/tree"
	"graphnode-be/pkg/cascade"
	"graphnode-be/pkg/events"
	pktNats "graphnode-be/pkg/nats"

	"github.com/google/uuid"
)

type IFolderService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllFolderResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error)
	Move(ctx context.Context, userId uuid.UUID, req *dto.MoveFolderRequest) (*dto.MoveFolderResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error
	Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type folderService struct {
	uowFactory       unitofwork.RepositoryFactory
	cascadeManager   *cascade.Manager
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewFolderService(
	uowFactory unitofwork.RepositoryFactory,
	cascadeManager *cascade.Manager,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IFolderService {
	return &folderService{
		uowFactory:       uowFactory,
		cascadeManager:   cascadeManager,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (c *folderService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllFolderResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	folders, err := uow.FolderRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	result := make([]*dto.GetAllFolderResponse, 0)
	for _, folder := range folders {
		result = append(result, &dto.GetAllFolderResponse{
			Id:        folder.Id,
			Name:      folder.Name,
			ParentId:  folder.ParentId,
			CreatedAt: folder.CreatedAt,
			UpdatedAt: folder.UpdatedAt,
			Notes:     make([]*dto.GetAllFolderResponseNote, 0),
		})
		ids = append(ids, folder.Id)
	}

	if len(ids) == 0 {
		return result, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByFolderIDs{FolderIDs: ids},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(result); i++ {
		for j := 0; j < len(notes); j++ {
			if notes[j].FolderId != nil && *notes[j].FolderId == result[i].Id {
				result[i].Notes = append(result[i].Notes, &dto.GetAllFolderResponseNote{
					Id:        notes[j].Id,
					Title:     notes[j].Title,
					Content:   notes[j].Content,
					CreatedAt: notes[j].CreatedAt,
					UpdatedAt: notes[j].UpdatedAt,
				})
			}
		}
	}

	return result, nil
}

func (c *folderService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.CreateFolderResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if req.ParentId != nil {
		parent, err := uow.FolderRepository().FindOne(ctx,
			specification.ByID{ID: *req.ParentId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent folder", ErrNotFound)
		}
	}

	folder := entity.Folder{
		Id:        uuid.New(),
		Name:      req.Name,
		ParentId:  req.ParentId,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}

	if err := uow.FolderRepository().Create(ctx, &folder); err != nil {
		return nil, err
	}

	c.notifyFolderChange(ctx, userId)

	return &dto.CreateFolderResponse{Id: folder.Id}, nil
}

func (c *folderService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.UpdateFolderResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("%w: folder", ErrNotFound)
	}

	now := time.Now().UTC()
	folder.Name = req.Name
	folder.UpdatedAt = &now

	if err := uow.FolderRepository().Update(ctx, folder); err != nil {
		return nil, err
	}

	c.notifyFolderChange(ctx, userId)

	return &dto.UpdateFolderResponse{Id: folder.Id}, nil
}

// Move reparents a folder. The new parent must be the root or a folder the
// user owns, and must not sit inside the moved folder's own subtree: a
// folder can never become its own ancestor.
func (c *folderService) Move(ctx context.Context, userId uuid.UUID, req *dto.MoveFolderRequest) (*dto.MoveFolderResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	folderRepo := uow.FolderRepository()

	folder, err := folderRepo.FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("%w: folder", ErrNotFound)
	}

	if req.ParentId != nil {
		if *req.ParentId == folder.Id {
			return nil, fmt.Errorf("%w: folder cannot be its own parent", ErrValidation)
		}

		parent, err := folderRepo.FindOne(ctx,
			specification.ByID{ID: *req.ParentId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent folder", ErrNotFound)
		}

		descendants, err := tree.NewResolver(folderRepo).Descendants(ctx, userId, folder.Id)
		if err != nil {
			return nil, err
		}
		for _, id := range descendants {
			if id == *req.ParentId {
				return nil, fmt.Errorf("%w: cannot move a folder into its own subtree", ErrValidation)
			}
		}
	}

	now := time.Now().UTC()
	folder.ParentId = req.ParentId
	folder.UpdatedAt = &now

	if err := folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	c.notifyFolderChange(ctx, userId)

	return &dto.MoveFolderResponse{Id: folder.Id}, nil
}

func (c *folderService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error {
	if err := c.cascadeManager.DeleteFolder(ctx, userId, id, permanent); err != nil {
		if errors.Is(err, cascade.ErrFolderNotFound) {
			return fmt.Errorf("%w: folder", ErrNotFound)
		}
		return err
	}

	c.notifyFolderChange(ctx, userId)
	c.publishEvent(ctx, events.FolderDeleted, map[string]interface{}{
		"user_id":   userId,
		"folder_id": id,
		"permanent": permanent,
	})

	return nil
}

func (c *folderService) Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if err := c.cascadeManager.RestoreFolder(ctx, userId, id); err != nil {
		if errors.Is(err, cascade.ErrFolderNotFound) {
			return fmt.Errorf("%w: folder", ErrNotFound)
		}
		return err
	}

	c.notifyFolderChange(ctx, userId)
	c.publishEvent(ctx, events.FolderRestored, map[string]interface{}{
		"user_id":   userId,
		"folder_id": id,
	})

	return nil
}

// notifyFolderChange wakes the user's other devices. Folder lifecycle moves
// notes too, so both kinds are flagged.
func (c *folderService) notifyFolderChange(ctx context.Context, userId uuid.UUID) {
	msg := dto.SyncChangedMessage{UserId: userId, Kinds: []string{"notes", "folders"}}
	msgJson, _ := json.Marshal(msg)
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish sync change notice: %v\n", err)
	}
}

func (c *folderService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
