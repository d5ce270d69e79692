package main

// @title           DocProcess Core API
// @version         1.0
// @description     Multi-context document processing API. Upload PDFs as yourself, an organization or a principal you help, and pay per page in credits.

// @contact.name   DocProcess OSS
// @contact.url    https://github.com/custodia-labs/docprocess-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/docprocess-core/docs"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driven/auth"
	localblob "github.com/custodia-labs/docprocess-core/internal/adapters/driven/blob/afero"
	minioblob "github.com/custodia-labs/docprocess-core/internal/adapters/driven/blob/minio"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driven/cache"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driven/clock"
	kafkaevents "github.com/custodia-labs/docprocess-core/internal/adapters/driven/events/kafka"
	logevents "github.com/custodia-labs/docprocess-core/internal/adapters/driven/events/log"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driven/pdf"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/custodia-labs/docprocess-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/custodia-labs/docprocess-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/docprocess-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/docprocess-core/internal/adapters/driving/http"
	"github.com/custodia-labs/docprocess-core/internal/config"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
	"github.com/custodia-labs/docprocess-core/internal/core/services"
	"github.com/custodia-labs/docprocess-core/internal/worker"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// Command line arg overrides RUN_MODE
	if len(os.Args) > 1 {
		cfg.RunMode = os.Args[1]
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration:\n%v", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	log.Printf("docprocess-core %s starting in %s mode", version, cfg.RunMode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleSec) * time.Second,
		ConnectAttempts: 5,
		RetryDelay:      2 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.UsesRedis() {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== PostgreSQL Stores =====
	userStore := postgres.NewUserStore(db)
	documentStore := postgres.NewDocumentStore(db)
	orgStore := postgres.NewOrganizationStore(db)
	invitationStore := postgres.NewInvitationStore(db)
	helperStore := postgres.NewHelperStore(db)
	invoiceStore := postgres.NewInvoiceStore(db)
	schedulerStore := postgres.NewSchedulerStore(db)
	accountStore := cache.NewAccountStore(postgres.NewAccountStore(db), cfg.AccountCacheTTL())

	// ===== Session Store, Task Queue, Lock (Redis if available, otherwise PostgreSQL) =====
	var (
		sessionStore    driven.SessionStore
		taskQueue       driven.TaskQueue
		distributedLock driven.DistributedLock
	)
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		taskQueue, err = redisqueue.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		distributedLock = redisadapter.NewLock(redisClient)
		log.Println("Using Redis sessions, task queue and lock")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		taskQueue = postgresqueue.NewQueue(db.DB)
		distributedLock = postgres.NewTableLock(db)
		log.Println("Using PostgreSQL sessions, task queue and lock")
	}
	defer taskQueue.Close()

	// ===== Blob storage =====
	blobStore, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	log.Printf("Using %s blob storage", cfg.Blob.Backend)

	// ===== Document events =====
	var events driven.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		events = kafkaevents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Printf("Publishing document events to Kafka topic %s", cfg.Kafka.Topic)
	} else {
		events = logevents.NewPublisher(logger)
		log.Println("Kafka not configured, document events are logged")
	}
	defer events.Close()

	// ===== Services (core business logic) =====
	authAdapter := auth.NewAdapter(cfg.JWT.Secret)

	contextService := services.NewContextService(services.ContextServiceConfig{
		UserStore:    userStore,
		OrgStore:     orgStore,
		HelperStore:  helperStore,
		AccountStore: accountStore,
		SessionStore: sessionStore,
		Logger:       logger,
	})
	processingService := services.NewProcessingService(services.ProcessingServiceConfig{
		Documents:   documentStore,
		Blobs:       blobStore,
		Pages:       pdf.NewPageCounter(),
		Accounts:    accountStore,
		TaskQueue:   taskQueue,
		Lock:        distributedLock,
		Events:      events,
		Contexts:    contextService,
		Logger:      logger,
		MaxParallel: cfg.Worker.MaxParallelBlob,
	})
	uploadService := services.NewUploadService(services.UploadServiceConfig{
		Contexts:   contextService,
		Processing: processingService,
		Clock:      clock.Real{},
		Timing:     cfg.UploadTiming(),
		Logger:     logger,
	})

	svc := http.Services{
		Auth:          services.NewAuthService(userStore, sessionStore, accountStore, authAdapter, cfg.Billing.SignupCredits, contextService, uploadService),
		Users:         services.NewUserService(userStore, contextService),
		Contexts:      contextService,
		Documents:     services.NewDocumentService(documentStore, contextService),
		Uploads:       uploadService,
		Organizations: services.NewOrganizationService(orgStore, userStore, accountStore, contextService, logger),
		Invitations:   services.NewInvitationService(invitationStore, orgStore, userStore, contextService, logger),
		Helpers:       services.NewHelperService(helperStore, userStore, contextService, logger),
		Billing:       services.NewBillingService(accountStore, invoiceStore, contextService, logger),
	}

	// Drops per-session state of sessions that expired without a logout
	sweeper := services.NewSessionSweeper(services.SessionSweeperConfig{
		Sessions:  sessionStore,
		Releasers: []driving.SessionReleaser{contextService, uploadService},
		Uploads:   uploadService,
		Clock:     clock.Real{},
		Logger:    logger,
		Interval:  cfg.SweepInterval(),
		IdleAfter: cfg.UploadIdleAfter(),
	})

	var scheduler *services.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = services.NewScheduler(services.SchedulerConfig{
			Store:        schedulerStore,
			TaskQueue:    taskQueue,
			Lock:         distributedLock,
			Logger:       logger,
			LockRequired: cfg.Scheduler.LockRequired,
		})
		if err := scheduler.EnsureDefaults(ctx); err != nil {
			log.Fatalf("Failed to register default schedules: %v", err)
		}
		log.Printf("Scheduler enabled (lock_required=%t)", cfg.Scheduler.LockRequired)
	} else {
		log.Println("Scheduler disabled via SCHEDULER_ENABLED=false")
	}

	checks := map[string]http.Pinger{
		"postgres": db,
		"queue":    taskQueue,
		"blobs":    blobStore,
	}

	switch cfg.RunMode {
	case config.ModeAPI:
		sweeper.Start(ctx)
		defer sweeper.Stop()
		runAPI(cfg, logger, svc, checks)

	case config.ModeWorker:
		runWorkerMode(ctx, cfg, logger, taskQueue, processingService, scheduler)

	case config.ModeAll:
		go runWorkerMode(ctx, cfg, logger, taskQueue, processingService, scheduler)
		sweeper.Start(ctx)
		defer sweeper.Stop()
		runAPI(cfg, logger, svc, checks)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", cfg.RunMode)
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (driven.BlobStore, error) {
	if cfg.Blob.Backend == config.BlobBackendMinio {
		return minioblob.NewStore(ctx, minioblob.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	}
	return localblob.NewStore(cfg.Blob.Dir)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runAPI(cfg *config.Config, logger *slog.Logger, svc http.Services, checks map[string]http.Pinger) {
	server := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
	}, svc, checks)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the worker and scheduler and blocks until ctx is done.
func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	taskQueue driven.TaskQueue,
	processing driving.ProcessingService,
	scheduler *services.Scheduler,
) {
	log.Println("Starting worker mode...")

	w := worker.NewWorker(worker.WorkerConfig{
		TaskQueue:      taskQueue,
		Processing:     processing,
		Scheduler:      scheduler,
		Logger:         logger,
		Concurrency:    cfg.Worker.Concurrency,
		DequeueTimeout: cfg.Worker.DequeueTimeout,
		StaleAfter:     cfg.StaleAfter(),
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	log.Println("Worker started, processing tasks...")
	log.Println("Worker handles:")
	log.Println("  - process_document: count pages, debit credits, complete or fail a document")
	log.Println("  - reconcile_documents: fail documents stuck in processing")

	<-ctx.Done()

	log.Println("Stopping worker...")
	w.Stop()
	log.Println("Worker stopped")
}
