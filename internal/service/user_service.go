// FILE: internal/service/user_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/pkg/cascade"

	"github.com/google/uuid"
)

type IUserService interface {
	Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error)
	DeleteData(ctx context.Context, userId uuid.UUID) error
}

type userService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	cascadeManager   *cascade.Manager
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, cascadeManager *cascade.Manager) IUserService {
	return &userService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		cascadeManager:   cascadeManager,
	}
}

func (s *userService) Profile(ctx context.Context, userId uuid.UUID) (*dto.ProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	return &dto.ProfileResponse{
		Id:       user.Id,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

// DeleteData hard-deletes everything the user owns across all kinds,
// device checkpoints included. The account itself survives. Chat data goes
// in one transaction (messages before conversations); notes and folders go
// through the cascade manager's bulk wipes. Every step is idempotent, so a
// failure partway through is safe to retry.
func (s *userService) DeleteData(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().DeleteAllByUserIdUnscoped(ctx, userId); err != nil {
		return err
	}
	if err := uow.SyncDeviceRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := s.cascadeManager.DeleteAllNotes(ctx, userId); err != nil {
		return err
	}
	if err := s.cascadeManager.DeleteAllFolders(ctx, userId); err != nil {
		return err
	}

	msg := dto.SyncChangedMessage{UserId: userId, Kinds: []string{"conversations", "messages", "notes", "folders"}}
	msgJson, _ := json.Marshal(msg)
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish sync change notice: %v\n", err)
	}

	return nil
}
