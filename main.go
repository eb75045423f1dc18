package main

import (
	"context"
	"log"

	api "docusense-backend/cmd/api"
	authUsecase "docusense-backend/internal/auth/usecase"
	ingestdomain "docusense-backend/internal/ingestion/domain"
	ingestRepo "docusense-backend/internal/ingestion/repository"
	ingestUsecase "docusense-backend/internal/ingestion/usecase"
	searchUsecase "docusense-backend/internal/search/usecase"
	subdomain "docusense-backend/internal/subscription/domain"
	subRepo "docusense-backend/internal/subscription/repository"
	"docusense-backend/internal/subscription/scheduler"
	subUsecase "docusense-backend/internal/subscription/usecase"
	tenantdomain "docusense-backend/internal/tenant/domain"
	tenantRepo "docusense-backend/internal/tenant/repository"
	tenantUsecase "docusense-backend/internal/tenant/usecase"
	"docusense-backend/pkg/config"
	"docusense-backend/pkg/database"
	"docusense-backend/pkg/embedding"
	"docusense-backend/pkg/extract"
	"docusense-backend/pkg/graph"
	"docusense-backend/pkg/queue"
	"docusense-backend/pkg/vectorindex"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&tenantdomain.Tenant{},
		&subdomain.Subscription{},
		&ingestdomain.ProcessedItem{},
		&ingestdomain.DriveDeltaLink{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	tenantRepository := tenantRepo.NewTenantRepository(db)
	subRepository := subRepo.NewSubscriptionRepository(db)
	processedRepository := ingestRepo.NewProcessedItemRepository(db)
	deltaRepository := ingestRepo.NewDeltaLinkRepository(db)

	// Microsoft Graph client with app-only tokens
	tokenSource := graph.NewAppTokenSource(cfg.AADClientID, cfg.AADClientSecret)
	graphClient := graph.NewClient(tokenSource)

	// Azure OpenAI embedder
	embedder, err := embedding.NewAzureOpenAIEmbedder(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.AzureOpenAIDeployment, cfg.AzureOpenAIAPIVersion)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	// Chroma vector index
	index, err := vectorindex.NewChromaIndex(cfg, embedder)
	if err != nil {
		log.Fatal("Failed to initialize vector index:", err)
	}

	// Text extractor
	extractor := extract.NewExtractor()

	// Large-file queue (Pub/Sub). Only wired when a project is configured;
	// without it oversized files are rejected instead of queued.
	var publisher *queue.Publisher
	var largeFiles ingestUsecase.LargeFilePublisher
	if cfg.GoogleProjectID != "" {
		publisher, err = queue.NewPublisher(context.Background(), cfg.GoogleProjectID, cfg.LargeFileTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize large-file publisher (queue disabled): %v", err)
		} else {
			largeFiles = publisher
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, large-file queue disabled")
	}

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(cfg)
	ingestionUc := ingestUsecase.NewIngestionUsecase(processedRepository, deltaRepository, tenantRepository, graphClient, index, extractor, largeFiles)
	subUc := subUsecase.NewSubscriptionUsecase(subRepository, tenantRepository, graphClient, cfg)
	tenantUc := tenantUsecase.NewTenantUsecase(tenantRepository, processedRepository, deltaRepository, subUc, index)
	searchUc := searchUsecase.NewSearchUsecase(index)

	// Large-file consumer feeds queued jobs back into the ingestion pipeline
	if publisher != nil {
		consumer, err := queue.NewConsumer(context.Background(), cfg.GoogleProjectID, cfg.LargeFileTopic, cfg.GoogleCredentials, ingestionUc.ProcessLargeFile)
		if err != nil {
			log.Printf("[WARN] Failed to initialize large-file consumer: %v", err)
		} else {
			go consumer.Start(context.Background())
		}
	}

	// Subscription renewal scheduler
	renewalScheduler := scheduler.NewRenewalScheduler(subUc, cfg.RenewalInterval)
	renewalScheduler.Start()
	defer renewalScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, tenantUc, subUc, ingestionUc, searchUc)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
