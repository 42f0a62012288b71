package bootstrap

import (
	"context"
	"log"

	"graphnode-be/internal/config"
	"graphnode-be/internal/controller"
	"graphnode-be/internal/handler"
	"graphnode-be/internal/pkg/logger"
	"graphnode-be/internal/repository/memory"
	"graphnode-be/internal/repository/unitofwork"
	"graphnode-be/internal/service"
	"graphnode-be/internal/websocket"
	"graphnode-be/pkg/cascade"

	pktNats "graphnode-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController         controller.IAuthController
	UserController         controller.IUserController
	SyncController         controller.ISyncController
	FolderController       controller.IFolderController
	NoteController         controller.INoteController
	ConversationController controller.IConversationController

	// Background services, run by main
	ConsumerService service.IConsumerService

	// WebSockets
	SyncSocketHandler *handler.SyncSocketHandler
	WebSocketHub      *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// In-process change bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (cross-instance websocket fan-out)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/sync_socket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Bus endpoints
	publisherService := service.NewPublisherService(cfg.Sync.ChangedTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Sync.ChangedTopic, wsHub)

	// Domain services
	checkpoints := memory.NewCheckpointRepository(cfg.Sync.CheckpointInterval)
	cascadeManager := cascade.NewManager(uowFactory)

	authService := service.NewAuthService(uowFactory, natsPub)
	userService := service.NewUserService(uowFactory, publisherService, cascadeManager)
	syncService := service.NewSyncService(uowFactory, publisherService, natsPub, checkpoints)
	folderService := service.NewFolderService(uowFactory, cascadeManager, publisherService, natsPub)
	noteService := service.NewNoteService(uowFactory, publisherService)
	conversationService := service.NewConversationService(uowFactory, publisherService)

	// Audit worker: tails the event stream when a broker is reachable
	if natsSub != nil {
		auditService := service.NewEventAuditService(natsSub, sysLogger)
		go auditService.Start()
	}

	sysLogger.Info("Bootstrap", "Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	return &Container{
		AuthController:         controller.NewAuthController(authService),
		UserController:         controller.NewUserController(userService),
		SyncController:         controller.NewSyncController(syncService),
		FolderController:       controller.NewFolderController(folderService),
		NoteController:         controller.NewNoteController(noteService),
		ConversationController: controller.NewConversationController(conversationService),

		ConsumerService: consumerService,

		SyncSocketHandler: handler.NewSyncSocketHandler(wsHub, wsLogger),
		WebSocketHub:      wsHub,
	}
}
