package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"file-storage-api/config"
	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/application/services"
	domainblob "file-storage-api/internal/domain/blob"
	"file-storage-api/internal/domain/file"
	blobmem "file-storage-api/internal/infrastructure/blob/memory"
	"file-storage-api/internal/infrastructure/blob/minio"
	"file-storage-api/internal/infrastructure/blob/s3"
	memdb "file-storage-api/internal/infrastructure/db/memory"
	"file-storage-api/internal/infrastructure/db/postgres"
	"file-storage-api/internal/infrastructure/db/postgres/session"
	"file-storage-api/internal/infrastructure/metrics"
	"file-storage-api/internal/infrastructure/mq"
	"file-storage-api/internal/infrastructure/token"
	"file-storage-api/internal/interface/api/rest"
	"file-storage-api/internal/interface/api/rest/middleware"
	"file-storage-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	tx         ports.TxManager
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	mBytes     *prometheus.HistogramVec
	mq         ports.RabbitMQ
	mqConsumer ports.RMQConsumer
	publisher  ports.EventPublisher
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (config.Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	switch cfg.App.Env {
	case "dev", "development", gin.DebugMode:
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	// metrics
	mCounter := metrics.NewCounter()
	mBytes := metrics.NewTransferBytes()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogGin(logger, mCounter))

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a := &App{
		logger:   logger,
		cfg:      cfg,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		mBytes:   mBytes,
	}

	if err := a.initStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initMQ(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// initStorage wires the metadata backend and the blob backend it journals.
func (a *App) initStorage(ctx context.Context) error {
	blobs, err := a.externalBlobStore(ctx)
	if err != nil {
		return err
	}

	switch a.cfg.Storage.MetaBackend {
	case config.BackendMemory:
		if blobs == nil {
			blobs = blobmem.New()
		}
		a.tx = memdb.New(blobs, a.logger, a.mCounter)
		a.logger.Warn("in-memory metadata backend: data is lost on restart")
		return nil
	default:
		if err = a.connectDB(ctx); err != nil {
			return err
		}
		a.tx = session.New(a.db, blobs, a.logger, a.mCounter)
		return nil
	}
}

// externalBlobStore returns nil for large objects, which live in the
// metadata transaction itself.
func (a *App) externalBlobStore(ctx context.Context) (domainblob.Store, error) {
	switch a.cfg.Storage.BlobBackend {
	case config.BackendS3:
		st, err := s3.New(ctx, a.logger, a.cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 blob store: %w", err)
		}
		return st, nil
	case config.BackendMinio:
		st, err := minio.New(ctx, a.logger, a.cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio blob store: %w", err)
		}
		return st, nil
	case config.BackendMemory:
		return blobmem.New(), nil
	default:
		return nil, nil
	}
}

func (a *App) connectDB(ctx context.Context) error {
	if a.db != nil {
		return nil
	}
	dsn, err := a.cfg.DBDSN()
	if err != nil {
		return fmt.Errorf("DB config error: %w", err)
	}
	a.db, err = postgres.New(ctx, a.logger, dsn)
	return err
}

func (a *App) initMQ(ctx context.Context) error {
	if !a.cfg.MQ.Enabled {
		a.logger.Info("rabbitmq disabled, lifecycle events are not published")
		return nil
	}

	dsn, err := a.cfg.AMQPDSN()
	if err != nil {
		return fmt.Errorf("RabbitMQ config error: %w", err)
	}

	rbMQ := mq.New(a.cfg.MQ, a.logger, a.mCounter)
	if err = rbMQ.Connect(ctx, dsn); err != nil {
		return fmt.Errorf("failed to connect to rabbitMQ: %w", err)
	}
	a.mq = rbMQ
	a.publisher = rbMQ
	if err = rbMQ.Init(); err != nil {
		return fmt.Errorf("failed init rabbitMQ: %w", err)
	}

	consumer := rmqconsumer.New(a.cfg.MQ, a.logger, a.mCounter)
	if err = consumer.Connect(dsn); err != nil {
		return fmt.Errorf("failed to connect rabbitMQ consumer: %w", err)
	}
	if err = consumer.Init(); err != nil {
		return fmt.Errorf("failed to init rabbitMQ consumer: %w", err)
	}
	a.mqConsumer = consumer

	return nil
}

// Migrate applies the embedded schema migrations and exits.
func Migrate(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Storage.MetaBackend != config.BackendPostgres {
		return fmt.Errorf("migrations need the postgres metadata backend, got %q", cfg.Storage.MetaBackend)
	}
	a := &App{cfg: cfg, logger: logger}
	if err := a.connectDB(ctx); err != nil {
		return err
	}
	defer a.db.Close()

	return postgres.Migrate(ctx, logger, a.db)
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.mq != nil && a.mq.GetConn() != nil {
		_ = a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name,
			zap.String("addr", a.httpSrv.Addr),
			zap.String("blob_backend", a.cfg.Storage.BlobBackend),
			zap.String("meta_backend", a.cfg.Storage.MetaBackend),
		)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	if a.mq != nil {
		g.Go(func() error {
			a.mq.PublisherWorker(ctx)
			return nil
		})
	}
	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
		return err
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() error {
	tokens, err := token.New(a.cfg.App.JWTSecret, a.cfg.App.TokenTTL)
	if err != nil {
		return fmt.Errorf("token authority: %w", err)
	}

	// services
	gate := services.NewAccessGate(tokens)
	quota := services.NewQuota(a.cfg.Storage.MaxFilesPerUser, a.cfg.Storage.MaxPayloadBytes)
	engine := services.NewStorageEngine(a.tx, quota, gate, a.publisher, services.StorageConfig{
		ChunkSize:    a.cfg.App.ChunkSize,
		ChunkTimeout: a.cfg.App.ChunkTimeout,
	}, a.logger, a.mCounter, a.mBytes)
	query := services.NewQueryEngine(a.tx)
	authService := services.NewAuthService(a.tx.Users(), tokens, a.publisher, a.mCounter)
	userService := services.NewUserService(a.tx, engine, a.publisher, a.logger, a.mCounter)

	// controllers
	rest.NewAuthController(a.router, a.logger, gate, authService)
	rest.NewFileController(a.router, gate, engine, query, quota, file.PageLimits{
		Default: a.cfg.Storage.DefaultPageSize,
		Max:     a.cfg.Storage.MaxPageSize,
	}, a.cfg.App.ChunkTimeout, a.logger)
	rest.NewUserController(a.router, gate, userService, a.logger)

	// ops
	a.router.GET(rest.RouteHealth, a.health)
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))

	return nil
}

func (a *App) health(c *gin.Context) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			a.logger.Error("health check: db ping", zap.Error(err))
			c.Status(http.StatusServiceUnavailable)
			return
		}
	}
	c.Status(http.StatusOK)
}

func (a *App) Logger() *zap.Logger { return a.logger }
