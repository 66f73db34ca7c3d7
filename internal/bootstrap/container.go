package bootstrap

import (
	"log"
	"time"

	"pdf-chat-be/internal/config"
	"pdf-chat-be/internal/controller"
	"pdf-chat-be/internal/handler"
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/internal/service"
	"pdf-chat-be/internal/websocket"
	"pdf-chat-be/pkg/blob"
	"pdf-chat-be/pkg/chunker"
	"pdf-chat-be/pkg/events"
	"pdf-chat-be/pkg/llm/factory"
	"pdf-chat-be/pkg/rag/history"
	"pdf-chat-be/pkg/rag/query"
	"pdf-chat-be/pkg/rag/session"
	"pdf-chat-be/pkg/rag/upload"

	pktNats "pdf-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatbotController  controller.IChatbotController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Status
	SessionHandler *handler.SessionHandler
	WebSocketHub   *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS mirror is optional
	var mirror events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			mirror = natsPub
		}
	}

	publisherService := service.NewPublisherService(events.Topic, pubSub)
	consumerService := service.NewConsumerService(pubSub, events.Topic, mirror, sysLogger)

	// 3. Generation
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.BaseURL(),
		time.Duration(cfg.Ai.TimeoutSecs)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Session state
	historyLog := history.NewLog()
	sessionManager := session.NewManager(historyLog)
	blobRepo := memory.NewBlobRepository()

	// 5. Ingestion
	storageTimeout := time.Duration(cfg.Storage.TimeoutSecs) * time.Second
	blobClient := blob.NewClient(cfg.Storage.BrokerURL, storageTimeout)
	if !blobClient.Enabled() {
		sysLogger.Warn("BOOTSTRAP", "BLOB_BROKER_URL is empty, uploads stay in memory", nil)
	}

	var trigger upload.ChunkTrigger
	if cfg.Storage.ChunkMode == "remote" {
		trigger = upload.NewRemoteTrigger(cfg.Storage.ChunkTriggerURL, storageTimeout)
	} else {
		docChunker := chunker.New(chunker.NewPDFExtractor(), cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
		trigger = upload.NewLocalTrigger(blobRepo, docChunker)
	}
	log.Printf("[INFO] Using chunk mode: %s", cfg.Storage.ChunkMode)

	coordinator := upload.NewCoordinator(sessionManager, blobClient, blobRepo, trigger, publisherService, sysLogger)

	// 6. Query
	retriever := query.NewRetriever(cfg.Rag.RetrievalMode, cfg.Rag.RetrievalTopK)
	orchestrator := query.NewOrchestrator(
		sessionManager,
		historyLog,
		retriever,
		llmProvider,
		cfg.Ai.DefaultAPIKey,
		publisherService,
		llmLogger,
	)

	// 7. Status stream
	wsHub := websocket.NewHub(sessionManager.Status, sysLogger)
	go wsHub.Run()
	sessionManager.OnStatusChange(wsHub.BroadcastStatus)

	documentService := service.NewDocumentService(sessionManager, coordinator, blobRepo, publisherService, sysLogger)
	chatbotService := service.NewChatbotService(orchestrator, historyLog)
	sessionService := service.NewSessionService(sessionManager, coordinator, orchestrator)

	// 8. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		DocumentController: controller.NewDocumentController(documentService),
		ChatbotController:  controller.NewChatbotController(chatbotService),
		SessionHandler:     handler.NewSessionHandler(sessionService, wsHub, sysLogger),
		WebSocketHub:       wsHub,
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
