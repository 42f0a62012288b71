// FILE: internal/service/conversation_service.go
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

type IConversationService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ConversationResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateConversationRequest) (*dto.UpdateConversationResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error
	Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	AppendMessage(ctx context.Context, userId uuid.UUID, req *dto.AppendMessageRequest) (*dto.AppendMessageResponse, error)
	GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error)
}

type conversationService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IConversationService {
	return &conversationService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (c *conversationService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID, withDeleted bool) (*entity.Conversation, error) {
	specs := []specification.Specification{
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	}
	if withDeleted {
		specs = append(specs, specification.WithDeleted{})
	}
	return uow.ConversationRepository().FindOne(ctx, specs...)
}

func (c *conversationService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		result = append(result, &dto.ConversationResponse{
			Id:        conv.Id,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	return result, nil
}

func (c *conversationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation := entity.Conversation{
		Id:        uuid.New(),
		Title:     req.Title,
		UserId:    userId,
		CreatedAt: time.Now().UTC(),
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	c.notifyChange(ctx, userId, "conversations")

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

func (c *conversationService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findOwned(ctx, uow, userId, id, false)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: conversation", ErrNotFound)
	}

	return &dto.ConversationResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}, nil
}

func (c *conversationService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateConversationRequest) (*dto.UpdateConversationResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findOwned(ctx, uow, userId, req.Id, false)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: conversation", ErrNotFound)
	}

	now := time.Now().UTC()
	conversation.Title = req.Title
	conversation.UpdatedAt = &now

	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}

	c.notifyChange(ctx, userId, "conversations")

	return &dto.UpdateConversationResponse{Id: conversation.Id}, nil
}

// Delete removes a conversation together with its messages, in one
// transaction. Soft delete stamps both so the tombstones flow through pull.
func (c *conversationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, permanent bool) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := c.findOwned(ctx, uow, userId, id, true)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("%w: conversation", ErrNotFound)
	}

	now := time.Now().UTC()
	if permanent {
		if err := uow.MessageRepository().HardDeleteByConversationId(ctx, userId, id); err != nil {
			return err
		}
		if err := uow.ConversationRepository().HardDelete(ctx, id); err != nil {
			return err
		}
	} else {
		if err := uow.MessageRepository().SoftDeleteByConversationId(ctx, userId, id, now); err != nil {
			return err
		}
		if err := uow.ConversationRepository().SoftDelete(ctx, id, now); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.notifyChange(ctx, userId, "conversations", "messages")
	return nil
}

func (c *conversationService) Restore(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := c.findOwned(ctx, uow, userId, id, true)
	if err != nil {
		return err
	}
	if conversation == nil {
		return fmt.Errorf("%w: conversation", ErrNotFound)
	}

	now := time.Now().UTC()
	if err := uow.ConversationRepository().Restore(ctx, id, now); err != nil {
		return err
	}
	if err := uow.MessageRepository().RestoreByConversationId(ctx, userId, id, now); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.notifyChange(ctx, userId, "conversations", "messages")
	return nil
}

func (c *conversationService) AppendMessage(ctx context.Context, userId uuid.UUID, req *dto.AppendMessageRequest) (*dto.AppendMessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findOwned(ctx, uow, userId, req.ConversationId, false)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: conversation", ErrNotFound)
	}

	message := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           req.Role,
		Content:        req.Content,
		UserId:         userId,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, err
	}

	c.notifyChange(ctx, userId, "messages")

	return &dto.AppendMessageResponse{Id: message.Id}, nil
}

func (c *conversationService) GetMessages(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	conversation, err := c.findOwned(ctx, uow, userId, conversationId, false)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("%w: conversation", ErrNotFound)
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, &dto.MessageResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
			UpdatedAt: msg.UpdatedAt,
		})
	}
	return result, nil
}

func (c *conversationService) notifyChange(ctx context.Context, userId uuid.UUID, kinds ...string) {
	msg := dto.SyncChangedMessage{UserId: userId, Kinds: kinds}
	msgJson, _ := json.Marshal(msg)
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		fmt.Printf("[WARN] Failed to publish sync change notice: %v\n", err)
	}
}
