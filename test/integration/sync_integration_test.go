package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"graphnode-be/internal/dto"
	"graphnode-be/internal/entity"
	"graphnode-be/internal/model"
	"graphnode-be/internal/repository/memory"
	"graphnode-be/internal/repository/specification"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/internal/service"
	"graphnode-be/pkg/cascade"
	"graphnode-be/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type syncFixture struct {
	db          *gorm.DB
	uowFactory  unitofwork.RepositoryFactory
	syncService service.ISyncService
	cascade     *cascade.Manager
}

func setupFixture(t *testing.T) *syncFixture {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")

	require.NoError(t, gormDB.AutoMigrate(
		&model.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Folder{},
		&model.Note{},
		&model.SyncDevice{},
	))

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	publisherService := service.NewPublisherService("SYNC_CHANGED_TEST", pubSub)
	checkpoints := memory.NewCheckpointRepository(time.Minute)

	return &syncFixture{
		db:          gormDB,
		uowFactory:  uowFactory,
		syncService: service.NewSyncService(uowFactory, publisherService, nil, checkpoints),
		cascade:     cascade.NewManager(uowFactory),
	}
}

func (f *syncFixture) newUser(t *testing.T) uuid.UUID {
	t.Helper()
	uow := f.uowFactory.NewUnitOfWork(context.Background())
	user := &entity.User{
		Id:           uuid.New(),
		Email:        "sync-test-" + uuid.New().String() + "@example.com",
		FullName:     "Sync Test User",
		PasswordHash: "x",
		Status:       entity.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user.Id
}

func ts(t time.Time) *time.Time { return &t }

func TestPushPullRoundtrip(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)

	folderId := uuid.New()
	noteId := uuid.New()
	convId := uuid.New()
	msgId := uuid.New()

	push := &dto.PushRequest{
		Folders: []*dto.FolderPayload{{
			Id: folderId, Name: "Inbox", CreatedAt: base, UpdatedAt: ts(base),
		}},
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "First", Content: "hello", FolderId: &folderId,
			CreatedAt: base, UpdatedAt: ts(base),
		}},
		Conversations: []*dto.ConversationPayload{{
			Id: convId, Title: "Chat", CreatedAt: base, UpdatedAt: ts(base),
		}},
		Messages: []*dto.MessagePayload{{
			Id: msgId, ConversationId: convId, Role: entity.MessageRoleUser,
			Content: "hi", CreatedAt: base, UpdatedAt: ts(base),
		}},
	}

	res, err := f.syncService.Push(ctx, userId, push, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Folders.Applied)
	assert.Equal(t, 1, res.Notes.Applied)
	assert.Equal(t, 1, res.Conversations.Applied)
	assert.Equal(t, 1, res.Messages.Applied)
	assert.False(t, res.ServerTime.IsZero())

	// Full pull: everything comes back.
	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Folders, 1)
	require.Len(t, pull.Notes, 1)
	require.Len(t, pull.Conversations, 1)
	require.Len(t, pull.Messages, 1)
	assert.Equal(t, "First", pull.Notes[0].Title)
	assert.Nil(t, pull.Notes[0].DeletedAt)

	// Delta pull from after the data's updated_at: nothing comes back.
	since := base.Add(time.Minute)
	delta, err := f.syncService.Pull(ctx, userId, &since, nil)
	require.NoError(t, err)
	assert.Empty(t, delta.Folders)
	assert.Empty(t, delta.Notes)
	assert.Empty(t, delta.Conversations)
	assert.Empty(t, delta.Messages)
}

func TestPushLastWriteWins(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	noteId := uuid.New()

	// Device A writes at base+10m.
	fresh := base.Add(10 * time.Minute)
	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Fresh", CreatedAt: base, UpdatedAt: ts(fresh),
		}},
	}, nil)
	require.NoError(t, err)

	// Device B pushes an older edit of the same note: skipped, not applied.
	stale := base.Add(5 * time.Minute)
	res, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Stale", CreatedAt: base, UpdatedAt: ts(stale),
		}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notes.Applied)
	assert.Equal(t, 1, res.Notes.Skipped)

	// An equal timestamp also loses: the server's copy wins ties.
	res, err = f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Tied", CreatedAt: base, UpdatedAt: ts(fresh),
		}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notes.Applied)
	assert.Equal(t, 1, res.Notes.Skipped)

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Notes, 1)
	assert.Equal(t, "Fresh", pull.Notes[0].Title)

	// A strictly newer edit goes through.
	newer := base.Add(20 * time.Minute)
	res, err = f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Newer", CreatedAt: base, UpdatedAt: ts(newer),
		}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notes.Applied)
}

func TestPushIdempotent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	noteId := uuid.New()
	req := &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Once", CreatedAt: base, UpdatedAt: ts(base),
		}},
	}

	first, err := f.syncService.Push(ctx, userId, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Notes.Applied)

	// Retrying the same batch changes nothing: the tie goes to the server.
	second, err := f.syncService.Push(ctx, userId, req, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Notes.Applied)
	assert.Equal(t, 1, second.Notes.Skipped)

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Notes, 1)
	assert.Equal(t, "Once", pull.Notes[0].Title)
}

func TestPushOwnershipIsolation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	alice := f.newUser(t)
	mallory := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	noteId := uuid.New()

	_, err := f.syncService.Push(ctx, alice, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Private", CreatedAt: base, UpdatedAt: ts(base),
		}},
	}, nil)
	require.NoError(t, err)

	// Another user pushing the same id is silently skipped, even with a
	// newer timestamp.
	res, err := f.syncService.Push(ctx, mallory, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Hijacked", CreatedAt: base, UpdatedAt: ts(base.Add(time.Hour)),
		}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Notes.Applied)
	assert.Equal(t, 1, res.Notes.Skipped)

	pull, err := f.syncService.Pull(ctx, alice, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Notes, 1)
	assert.Equal(t, "Private", pull.Notes[0].Title)

	// The other user never sees the row either.
	other, err := f.syncService.Pull(ctx, mallory, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, other.Notes)
}

func TestPushRejectsUnknownRole(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC()
	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Messages: []*dto.MessagePayload{{
			Id: uuid.New(), ConversationId: uuid.New(), Role: "oracle",
			CreatedAt: base, UpdatedAt: ts(base),
		}},
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCascadeDeleteAndRestore(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)

	// parent > child, one note in each, one note at the root.
	parentId := uuid.New()
	childId := uuid.New()
	noteInParent := uuid.New()
	noteInChild := uuid.New()
	rootNote := uuid.New()

	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Folders: []*dto.FolderPayload{
			{Id: parentId, Name: "Parent", CreatedAt: base, UpdatedAt: ts(base)},
			{Id: childId, Name: "Child", ParentId: &parentId, CreatedAt: base, UpdatedAt: ts(base)},
		},
		Notes: []*dto.NotePayload{
			{Id: noteInParent, Title: "In parent", FolderId: &parentId, CreatedAt: base, UpdatedAt: ts(base)},
			{Id: noteInChild, Title: "In child", FolderId: &childId, CreatedAt: base, UpdatedAt: ts(base)},
			{Id: rootNote, Title: "At root", CreatedAt: base, UpdatedAt: ts(base)},
		},
	}, nil)
	require.NoError(t, err)

	// Soft delete the parent: child and contained notes get tombstoned too.
	require.NoError(t, f.cascade.DeleteFolder(ctx, userId, parentId, false))

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)

	deleted := map[uuid.UUID]bool{}
	for _, folder := range pull.Folders {
		deleted[folder.Id] = folder.DeletedAt != nil
	}
	for _, note := range pull.Notes {
		deleted[note.Id] = note.DeletedAt != nil
	}
	assert.True(t, deleted[parentId])
	assert.True(t, deleted[childId])
	assert.True(t, deleted[noteInParent])
	assert.True(t, deleted[noteInChild])
	assert.False(t, deleted[rootNote], "root note must survive the cascade")

	// The cascade refreshed updated_at, so a delta pull sees the tombstones.
	since := base.Add(time.Minute)
	delta, err := f.syncService.Pull(ctx, userId, &since, nil)
	require.NoError(t, err)
	assert.Len(t, delta.Folders, 2)
	assert.Len(t, delta.Notes, 2)

	// Restore brings the whole subtree back.
	require.NoError(t, f.cascade.RestoreFolder(ctx, userId, parentId))

	pull, err = f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	for _, folder := range pull.Folders {
		assert.Nil(t, folder.DeletedAt, "folder %s should be restored", folder.Id)
	}
	for _, note := range pull.Notes {
		assert.Nil(t, note.DeletedAt, "note %s should be restored", note.Id)
	}

	// Hard delete removes the subtree for good; the root note stays.
	require.NoError(t, f.cascade.DeleteFolder(ctx, userId, parentId, true))

	pull, err = f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pull.Folders)
	require.Len(t, pull.Notes, 1)
	assert.Equal(t, rootNote, pull.Notes[0].Id)
}

func TestCascadeMissingFolder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)
	stranger := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second)
	folderId := uuid.New()
	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Folders: []*dto.FolderPayload{{Id: folderId, Name: "Mine", CreatedAt: base, UpdatedAt: ts(base)}},
	}, nil)
	require.NoError(t, err)

	err = f.cascade.DeleteFolder(ctx, userId, uuid.New(), false)
	assert.ErrorIs(t, err, cascade.ErrFolderNotFound)

	// A folder owned by someone else looks exactly like a missing one.
	err = f.cascade.DeleteFolder(ctx, stranger, folderId, false)
	assert.ErrorIs(t, err, cascade.ErrFolderNotFound)
}

func TestDeviceCheckpoints(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	device := &service.DeviceInfo{
		Id:       uuid.New(),
		Name:     "Test Laptop",
		Platform: "linux",
	}

	_, err := f.syncService.Pull(ctx, userId, nil, device)
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	_, err = f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{Id: uuid.New(), Title: "From device", CreatedAt: base, UpdatedAt: ts(base)}},
	}, device)
	require.NoError(t, err)

	devices, err := f.syncService.Devices(ctx, userId)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, device.Id, devices[0].Id)
	assert.Equal(t, "Test Laptop", devices[0].Name)
	assert.NotNil(t, devices[0].LastPulledAt)
	assert.NotNil(t, devices[0].LastPushedAt)

	// Verify the row actually landed in sync_devices.
	uow := f.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.SyncDeviceRepository().FindOne(ctx, specification.ByID{ID: device.Id})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, userId, record.UserId)
}

func TestPushResurrectsTombstone(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	noteId := uuid.New()

	// Client pushes a tombstone the server has never seen: stored as deleted.
	deletedAt := base.Add(5 * time.Minute)
	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Gone", CreatedAt: base,
			UpdatedAt: ts(deletedAt), DeletedAt: ts(deletedAt),
		}},
	}, nil)
	require.NoError(t, err)

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Notes, 1)
	assert.NotNil(t, pull.Notes[0].DeletedAt)

	// A newer live version un-deletes the row.
	revived := base.Add(10 * time.Minute)
	res, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Notes: []*dto.NotePayload{{
			Id: noteId, Title: "Back", CreatedAt: base, UpdatedAt: ts(revived),
		}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notes.Applied)

	pull, err = f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	require.Len(t, pull.Notes, 1)
	assert.Nil(t, pull.Notes[0].DeletedAt)
	assert.Equal(t, "Back", pull.Notes[0].Title)
}

func TestFolderMoveGuards(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	publisherService := service.NewPublisherService("SYNC_CHANGED_TEST", pubSub)
	folderService := service.NewFolderService(f.uowFactory, f.cascade, publisherService, nil)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	rootId := uuid.New()
	childId := uuid.New()
	grandchildId := uuid.New()

	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Folders: []*dto.FolderPayload{
			{Id: rootId, Name: "Root", CreatedAt: base, UpdatedAt: ts(base)},
			{Id: childId, Name: "Child", ParentId: &rootId, CreatedAt: base, UpdatedAt: ts(base)},
			{Id: grandchildId, Name: "Grandchild", ParentId: &childId, CreatedAt: base, UpdatedAt: ts(base)},
		},
	}, nil)
	require.NoError(t, err)

	// A folder cannot become its own parent.
	_, err = folderService.Move(ctx, userId, &dto.MoveFolderRequest{Id: rootId, ParentId: &rootId})
	require.ErrorIs(t, err, service.ErrValidation)

	// Nor land anywhere inside its own subtree.
	_, err = folderService.Move(ctx, userId, &dto.MoveFolderRequest{Id: rootId, ParentId: &grandchildId})
	require.ErrorIs(t, err, service.ErrValidation)

	// A legal reparent still works: the grandchild hops up to the root.
	_, err = folderService.Move(ctx, userId, &dto.MoveFolderRequest{Id: grandchildId, ParentId: &rootId})
	require.NoError(t, err)

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	for _, folder := range pull.Folders {
		if folder.Id == grandchildId {
			require.NotNil(t, folder.ParentId)
			assert.Equal(t, rootId, *folder.ParentId)
		}
	}
}

func TestBulkWipes(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	userId := f.newUser(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	folderId := uuid.New()
	filedNoteId := uuid.New()
	rootNoteId := uuid.New()

	_, err := f.syncService.Push(ctx, userId, &dto.PushRequest{
		Folders: []*dto.FolderPayload{{
			Id: folderId, Name: "Archive", CreatedAt: base, UpdatedAt: ts(base),
		}},
		Notes: []*dto.NotePayload{
			{Id: filedNoteId, Title: "Filed", FolderId: &folderId, CreatedAt: base, UpdatedAt: ts(base)},
			{Id: rootNoteId, Title: "Loose", CreatedAt: base, UpdatedAt: ts(base)},
		},
	}, nil)
	require.NoError(t, err)

	// Wiping folders takes the filed note with them; the root note stays.
	require.NoError(t, f.cascade.DeleteAllFolders(ctx, userId))

	pull, err := f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pull.Folders)
	require.Len(t, pull.Notes, 1)
	assert.Equal(t, rootNoteId, pull.Notes[0].Id)

	require.NoError(t, f.cascade.DeleteAllNotes(ctx, userId))

	pull, err = f.syncService.Pull(ctx, userId, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pull.Notes)
}
