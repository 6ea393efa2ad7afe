// cmd/container.go
//
// Composition root. Owns infrastructure (DB, Redis, file store, job queue)
// and wires the bounded contexts on top of it.
package main

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/fittsee/pkg/catalog/cataloginfra"
	"github.com/Abraxas-365/fittsee/pkg/catalog/catalogsrv"
	"github.com/Abraxas-365/fittsee/pkg/config"
	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/fittsee/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/fittsee/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/fittsee/pkg/jobx"
	"github.com/Abraxas-365/fittsee/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/profile/profileinfra"
	"github.com/Abraxas-365/fittsee/pkg/profile/profilesrv"
	"github.com/Abraxas-365/fittsee/pkg/render/renderexec"
	"github.com/Abraxas-365/fittsee/pkg/render/renderinfra"
	"github.com/Abraxas-365/fittsee/pkg/render/rendersrv"
	"github.com/Abraxas-365/fittsee/pkg/tryon/tryonsrv"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the composed modules.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client
	Queue      *jobxredis.RedisQueue
	Jobs       *jobx.Client

	// Bounded contexts
	IAM            *iamcontainer.Container
	ProfileService *profilesrv.Service
	CatalogRepo    *cataloginfra.PostgresCatalogRepository
	CatalogService *catalogsrv.CatalogService
	TryOnService   *tryonsrv.TryOnService
	RenderJobs     *renderinfra.PostgresRepository
	RenderService  *rendersrv.Service
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	db, err := openDatabase(c.Config.Database)
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	c.DB = db
	logx.Info("  ✅ Database connected")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if err := c.Redis.Ping(context.Background()).Err(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	c.Queue = jobxredis.NewRedisQueue(c.Redis, c.Config.Redis.KeyPrefix)
	c.Jobs = jobx.NewClient(c.Queue,
		jobx.WithQueues(c.Config.Jobx.Queues...),
		jobx.WithConcurrency(c.Config.Jobx.Concurrency),
		jobx.WithPollInterval(c.Config.Jobx.PollInterval),
		jobx.WithShutdownTimeout(c.Config.Jobx.ShutdownTimeout),
		jobx.WithDequeueTimeout(c.Config.Jobx.DequeueTimeout),
		jobx.WithConsumerName(c.Config.Jobx.ConsumerName),
	)

	c.initFileStorage()

	logx.Info("✅ Infrastructure initialized")
}

func openDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func (c *Container) initFileStorage() {
	storage := c.Config.Storage

	switch storage.Mode {
	case "s3":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(storage.S3Region))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.S3Client = s3.NewFromConfig(awsCfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, storage.S3Bucket, storage.S3Prefix)
		logx.Infof("  ✅ S3 file system configured (bucket: %s, region: %s)", storage.S3Bucket, storage.S3Region)

	default:
		localFS, err := fsxlocal.NewLocalFileSystem(storage.LocalPath)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("  ✅ Local file system configured (path: %s)", localFS.GetBasePath())
	}
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")
	publicBase := c.Config.Storage.PublicBaseURL

	profiles := profileinfra.NewPostgresProfileRepository(c.DB)
	c.ProfileService = profilesrv.NewService(profiles, c.FileSystem, profileinfra.NewMeanColorAnalyzer(), publicBase)

	c.IAM = iamcontainer.New(iamcontainer.Deps{
		DB:       c.DB,
		Cfg:      c.Config,
		Profiles: c.ProfileService,
	})

	c.CatalogRepo = cataloginfra.NewPostgresCatalogRepository(c.DB)
	c.CatalogService = catalogsrv.NewCatalogService(c.CatalogRepo, c.CatalogRepo, c.FileSystem, publicBase)

	c.TryOnService = tryonsrv.NewTryOnService(profiles, c.CatalogService)

	c.RenderJobs = renderinfra.NewPostgresRepository(c.DB)
	c.RenderService = rendersrv.NewService(c.RenderJobs, profiles, c.CatalogRepo, c.Jobs, rendersrv.Options{
		Queue:           c.Config.Render.Queue,
		EnqueueAttempts: c.Config.Render.EnqueueAttempts,
		EnqueueBackoff:  c.Config.Render.EnqueueBackoff,
	})
}

// renderProcessor builds the worker side of the render context.
func (c *Container) renderProcessor() *rendersrv.Processor {
	executor := renderexec.NewTemplateExecutor(
		c.FileSystem,
		c.Config.Render.TemplatePath,
		c.Config.Render.OutputDir,
		c.Config.Storage.PublicBaseURL,
	)
	return rendersrv.NewProcessor(c.RenderJobs, executor, c.Config.Render.MaxErrorLength)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
