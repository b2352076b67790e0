package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sci-z-declaration/internal/api/handler"
	"sci-z-declaration/internal/config"
	"sci-z-declaration/internal/core/postgres/repository"
	"sci-z-declaration/internal/dify"
	miniostore "sci-z-declaration/internal/infrastructure/minio"
	redisinfra "sci-z-declaration/internal/infrastructure/redis"
	"sci-z-declaration/internal/metrics"
	"sci-z-declaration/internal/notifier"
	"sci-z-declaration/internal/service"
	"sci-z-declaration/internal/worker"
	"sci-z-declaration/internal/workflow"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// 2. Redis: workflow job queue + declaration event bus
	redisClient := redisinfra.NewRedisClient(cfg.RedisAddr)
	jobQueue := redisinfra.NewRedisJobQueue(redisClient)
	eventBus := redisinfra.NewRedisEventBus(redisClient)

	// 3. Repositories
	declarationRepo := repository.NewDeclarationRepository(db)
	attachmentRepo := repository.NewAttachmentRelationRepository(db)

	// 4. External collaborators: Dify workflow endpoint, MinIO storage
	difyClient := dify.NewClient(dify.Config{
		BaseURL: cfg.DifyBaseURL,
		APIKey:  cfg.DifyAPIKey,
		APIKeys: cfg.DifyAPIKeys,
	})

	storage, err := miniostore.NewStorage(miniostore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatal("Failed to create minio storage:", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare minio bucket:", err)
	}

	// 5. The workflow core: tracker, retriever, relay, orchestrator
	workflowMetrics := metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer)
	tracker := workflow.NewProgressTracker(declarationRepo, workflowMetrics)
	retriever := workflow.NewRetriever()
	relay := workflow.NewRelay(declarationRepo, attachmentRepo, storage)
	orchestrator := workflow.NewOrchestrator(
		declarationRepo, difyClient, retriever, relay, eventBus, tracker, workflowMetrics)

	// 6. Background consumers: worker pool + notifier
	workflowWorker := worker.NewWorker(jobQueue, orchestrator)
	workflowWorker.StartPool(ctx, cfg.WorkerCount)

	go notifier.NewNotifier(eventBus).Start(ctx)

	// 7. HTTP surface
	declarationService := service.NewDeclarationService(declarationRepo, jobQueue, eventBus)
	declarationHandler := handler.NewDeclarationHandler(declarationService)

	router := gin.Default()

	api := router.Group("/api/v1")
	{
		api.POST("/declarations", declarationHandler.SubmitDeclaration)
		api.GET("/declarations/:id/workflow", declarationHandler.WorkflowStatus)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8. Start server; SIGINT/SIGTERM drains in-flight requests and returns
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	log.Println("Server starting on", cfg.ListenAddr)
	if err := serve(ctx, srv); err != nil {
		log.Fatal("Server error:", err)
	}
	log.Println("Server stopped")
}

// serve runs srv until it fails or ctx is cancelled, then shuts it down
// gracefully with a bounded drain window.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
