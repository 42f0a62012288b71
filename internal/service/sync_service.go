// FILE: internal/service/sync_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/entity"
	"graphnode-be/internal/repository/memory"
	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/pkg/events"
	pktNats "graphnode-be/pkg/nats"

	"github.com/google/uuid"
)

// DeviceInfo identifies the client installation behind a pull/push, taken
// from optional request headers. Sync works the same without it.
type DeviceInfo struct {
	Id       uuid.UUID
	Name     string
	Platform string
}

type ISyncService interface {
	Pull(ctx context.Context, userId uuid.UUID, since *time.Time, device *DeviceInfo) (*dto.PullResponse, error)
	Push(ctx context.Context, userId uuid.UUID, req *dto.PushRequest, device *DeviceInfo) (*dto.PushResponse, error)
	Devices(ctx context.Context, userId uuid.UUID) ([]*dto.SyncDeviceResponse, error)
}

type syncService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	checkpoints      *memory.CheckpointRepository
}

func NewSyncService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	checkpoints *memory.CheckpointRepository,
) ISyncService {
	return &syncService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		checkpoints:      checkpoints,
	}
}

// Pull returns every entity of every kind the caller owns with
// updated_at >= since, tombstoned rows included: a deletion is a change the
// client has to learn about. Hard-deleted rows are simply absent.
//
// server_time is captured before the delta queries run. A checkpoint taken
// afterwards could skip rows committed mid-pull; re-delivering a boundary
// row on the next pull is harmless under LWW, missing one is not.
func (s *syncService) Pull(ctx context.Context, userId uuid.UUID, since *time.Time, device *DeviceInfo) (*dto.PullResponse, error) {
	serverTime := time.Now().UTC()

	checkpoint := time.Unix(0, 0).UTC()
	if since != nil {
		checkpoint = *since
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.UpdatedSince{Since: checkpoint},
		specification.WithDeleted{},
	}

	conversations, err := uow.ConversationRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	messages, err := uow.MessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	folders, err := uow.FolderRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.PullResponse{
		Conversations: make([]*dto.ConversationPayload, 0, len(conversations)),
		Messages:      make([]*dto.MessagePayload, 0, len(messages)),
		Notes:         make([]*dto.NotePayload, 0, len(notes)),
		Folders:       make([]*dto.FolderPayload, 0, len(folders)),
		ServerTime:    serverTime,
	}
	for _, c := range conversations {
		res.Conversations = append(res.Conversations, conversationToPayload(c))
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, messageToPayload(m))
	}
	for _, n := range notes {
		res.Notes = append(res.Notes, noteToPayload(n))
	}
	for _, f := range folders {
		res.Folders = append(res.Folders, folderToPayload(f))
	}

	if device != nil {
		s.touchDevice(ctx, userId, device, &serverTime, nil)
	}

	return res, nil
}

// Push applies a client batch as one transaction across all four kinds.
// Items are independent: a skip never blocks its neighbors. LWW plus the
// single transaction make a whole-batch retry safe after an infrastructure
// failure.
func (s *syncService) Push(ctx context.Context, userId uuid.UUID, req *dto.PushRequest, device *DeviceInfo) (*dto.PushResponse, error) {
	for _, m := range req.Messages {
		if !entity.ValidMessageRole(m.Role) {
			return nil, fmt.Errorf("%w: unknown message role %q", ErrValidation, m.Role)
		}
	}

	serverTime := time.Now().UTC()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	res := &dto.PushResponse{ServerTime: serverTime}
	var err error

	if res.Conversations, err = s.pushConversations(ctx, uow, userId, req.Conversations); err != nil {
		return nil, err
	}
	if res.Messages, err = s.pushMessages(ctx, uow, userId, req.Messages); err != nil {
		return nil, err
	}
	if res.Notes, err = s.pushNotes(ctx, uow, userId, req.Notes); err != nil {
		return nil, err
	}
	if res.Folders, err = s.pushFolders(ctx, uow, userId, req.Folders); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if device != nil {
		s.touchDevice(ctx, userId, device, nil, &serverTime)
	}

	s.notifyChanged(ctx, userId, res, device)

	return res, nil
}

func (s *syncService) pushConversations(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, items []*dto.ConversationPayload) (dto.PushKindResult, error) {
	var res dto.PushKindResult
	repo := uow.ConversationRepository()
	for _, item := range items {
		existing, err := repo.FindOne(ctx, specification.ByID{ID: item.Id}, specification.WithDeleted{})
		if err != nil {
			return res, err
		}
		var rec *serverRecord
		if existing != nil {
			rec = &serverRecord{OwnerId: existing.UserId, UpdatedAt: existing.EffectiveUpdatedAt()}
		}
		incoming := conversationFromPayload(userId, item)
		switch decidePush(userId, rec, incoming.EffectiveUpdatedAt()) {
		case pushCreate:
			if err := repo.Create(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		case pushUpdate:
			if err := repo.Update(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *syncService) pushMessages(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, items []*dto.MessagePayload) (dto.PushKindResult, error) {
	var res dto.PushKindResult
	repo := uow.MessageRepository()
	for _, item := range items {
		existing, err := repo.FindOne(ctx, specification.ByID{ID: item.Id}, specification.WithDeleted{})
		if err != nil {
			return res, err
		}
		var rec *serverRecord
		if existing != nil {
			rec = &serverRecord{OwnerId: existing.UserId, UpdatedAt: existing.EffectiveUpdatedAt()}
		}
		incoming := messageFromPayload(userId, item)
		switch decidePush(userId, rec, incoming.EffectiveUpdatedAt()) {
		case pushCreate:
			if err := repo.Create(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		case pushUpdate:
			if err := repo.Update(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *syncService) pushNotes(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, items []*dto.NotePayload) (dto.PushKindResult, error) {
	var res dto.PushKindResult
	repo := uow.NoteRepository()
	for _, item := range items {
		existing, err := repo.FindOne(ctx, specification.ByID{ID: item.Id}, specification.WithDeleted{})
		if err != nil {
			return res, err
		}
		var rec *serverRecord
		if existing != nil {
			rec = &serverRecord{OwnerId: existing.UserId, UpdatedAt: existing.EffectiveUpdatedAt()}
		}
		incoming := noteFromPayload(userId, item)
		switch decidePush(userId, rec, incoming.EffectiveUpdatedAt()) {
		case pushCreate:
			if err := repo.Create(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		case pushUpdate:
			if err := repo.Update(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *syncService) pushFolders(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, items []*dto.FolderPayload) (dto.PushKindResult, error) {
	var res dto.PushKindResult
	repo := uow.FolderRepository()
	for _, item := range items {
		existing, err := repo.FindOne(ctx, specification.ByID{ID: item.Id}, specification.WithDeleted{})
		if err != nil {
			return res, err
		}
		var rec *serverRecord
		if existing != nil {
			rec = &serverRecord{OwnerId: existing.UserId, UpdatedAt: existing.EffectiveUpdatedAt()}
		}
		incoming := folderFromPayload(userId, item)
		switch decidePush(userId, rec, incoming.EffectiveUpdatedAt()) {
		case pushCreate:
			if err := repo.Create(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		case pushUpdate:
			if err := repo.Update(ctx, incoming); err != nil {
				return res, err
			}
			res.Applied++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

func (s *syncService) Devices(ctx context.Context, userId uuid.UUID) ([]*dto.SyncDeviceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	devices, err := uow.SyncDeviceRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.SyncDeviceResponse, 0, len(devices))
	for _, d := range devices {
		result = append(result, &dto.SyncDeviceResponse{
			Id:           d.Id,
			Name:         d.Name,
			Platform:     d.Platform,
			LastPulledAt: d.LastPulledAt,
			LastPushedAt: d.LastPushedAt,
			Metadata:     d.Metadata,
		})
	}
	return result, nil
}

// touchDevice records the device checkpoint outside the sync transaction.
// It is throttled through the in-memory cache and best-effort: losing a
// checkpoint write never fails a sync call.
func (s *syncService) touchDevice(ctx context.Context, userId uuid.UUID, device *DeviceInfo, pulledAt, pushedAt *time.Time) {
	now := time.Now().UTC()
	if pushedAt == nil && !s.checkpoints.ShouldPersist(device.Id, now) {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SyncDeviceRepository()

	existing, err := repo.FindOne(ctx, specification.ByID{ID: device.Id})
	if err != nil {
		fmt.Printf("[WARN] Failed to load sync device %s: %v\n", device.Id, err)
		return
	}
	if existing != nil && existing.UserId != userId {
		// Same silence as the push ownership guard.
		return
	}

	record := &entity.SyncDevice{
		Id:        device.Id,
		UserId:    userId,
		Name:      device.Name,
		Platform:  device.Platform,
		CreatedAt: now,
		UpdatedAt: &now,
	}
	if existing != nil {
		record.CreatedAt = existing.CreatedAt
		record.LastPulledAt = existing.LastPulledAt
		record.LastPushedAt = existing.LastPushedAt
		record.Metadata = existing.Metadata
		if device.Name == "" {
			record.Name = existing.Name
		}
		if device.Platform == "" {
			record.Platform = existing.Platform
		}
	}
	if pulledAt != nil {
		record.LastPulledAt = pulledAt
	}
	if pushedAt != nil {
		record.LastPushedAt = pushedAt
	}

	if err := repo.Upsert(ctx, record); err != nil {
		fmt.Printf("[WARN] Failed to upsert sync device %s: %v\n", device.Id, err)
	}
}

// notifyChanged fans out after a successful push: the internal bus wakes the
// owner's other connected devices, NATS feeds the external notification
// system. Both are fire-and-forget.
func (s *syncService) notifyChanged(ctx context.Context, userId uuid.UUID, res *dto.PushResponse, device *DeviceInfo) {
	kinds := make([]string, 0, 4)
	if res.Conversations.Applied > 0 {
		kinds = append(kinds, "conversations")
	}
	if res.Messages.Applied > 0 {
		kinds = append(kinds, "messages")
	}
	if res.Notes.Applied > 0 {
		kinds = append(kinds, "notes")
	}
	if res.Folders.Applied > 0 {
		kinds = append(kinds, "folders")
	}
	if len(kinds) == 0 {
		return
	}

	msg := dto.SyncChangedMessage{UserId: userId, Kinds: kinds}
	if msgJson, err := json.Marshal(msg); err == nil {
		if err := s.publisherService.Publish(ctx, msgJson); err != nil {
			fmt.Printf("[WARN] Failed to publish sync change notice: %v\n", err)
		}
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.SyncPushed,
			Data: map[string]interface{}{
				"user_id": userId,
				"kinds":   kinds,
			},
			OccurredAt: time.Now(),
		}
		if device != nil {
			evt.Data["device_id"] = device.Id
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SYNC_PUSHED event: %v\n", err)
		}
	}
}

// payload <-> entity conversion. The owner always comes from the
// authenticated caller, never from the wire.

func conversationFromPayload(userId uuid.UUID, p *dto.ConversationPayload) *entity.Conversation {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &entity.Conversation{
		Id:        p.Id,
		Title:     p.Title,
		UserId:    userId,
		CreatedAt: createdAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
		IsDeleted: p.DeletedAt != nil,
	}
}

func conversationToPayload(c *entity.Conversation) *dto.ConversationPayload {
	return &dto.ConversationPayload{
		Id:        c.Id,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
	}
}

func messageFromPayload(userId uuid.UUID, p *dto.MessagePayload) *entity.Message {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &entity.Message{
		Id:             p.Id,
		ConversationId: p.ConversationId,
		Role:           p.Role,
		Content:        p.Content,
		UserId:         userId,
		CreatedAt:      createdAt,
		UpdatedAt:      p.UpdatedAt,
		DeletedAt:      p.DeletedAt,
		IsDeleted:      p.DeletedAt != nil,
	}
}

func messageToPayload(m *entity.Message) *dto.MessagePayload {
	return &dto.MessagePayload{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		DeletedAt:      m.DeletedAt,
	}
}

func noteFromPayload(userId uuid.UUID, p *dto.NotePayload) *entity.Note {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &entity.Note{
		Id:        p.Id,
		Title:     p.Title,
		Content:   p.Content,
		FolderId:  p.FolderId,
		UserId:    userId,
		CreatedAt: createdAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
		IsDeleted: p.DeletedAt != nil,
	}
}

func noteToPayload(n *entity.Note) *dto.NotePayload {
	return &dto.NotePayload{
		Id:        n.Id,
		Title:     n.Title,
		Content:   n.Content,
		FolderId:  n.FolderId,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		DeletedAt: n.DeletedAt,
	}
}

func folderFromPayload(userId uuid.UUID, p *dto.FolderPayload) *entity.Folder {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return &entity.Folder{
		Id:        p.Id,
		Name:      p.Name,
		ParentId:  p.ParentId,
		UserId:    userId,
		CreatedAt: createdAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
		IsDeleted: p.DeletedAt != nil,
	}
}

func folderToPayload(f *entity.Folder) *dto.FolderPayload {
	return &dto.FolderPayload{
		Id:        f.Id,
		Name:      f.Name,
		ParentId:  f.ParentId,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		DeletedAt: f.DeletedAt,
	}
}
