package main

import (
	"context"
	"os"
	"time"

	"github.com/Abraxas-365/talentmatch/internal/ai/docanalyzer"
	"github.com/Abraxas-365/talentmatch/internal/ai/embeddings"
	"github.com/Abraxas-365/talentmatch/pkg/config"
	"github.com/Abraxas-365/talentmatch/pkg/fsx"
	"github.com/Abraxas-365/talentmatch/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/talentmatch/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/talentmatch/pkg/iam/auth"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis/analysisapi"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis/analysisinfra"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis/analysissrv"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/candidateapi"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/candidateinfra"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/candidatesrv"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/worker"
	"github.com/Abraxas-365/talentmatch/recruitment/job/jobinfra"
	"github.com/Abraxas-365/talentmatch/recruitment/match/matchapi"
	"github.com/Abraxas-365/talentmatch/recruitment/match/matchinfra"
	"github.com/Abraxas-365/talentmatch/recruitment/match/matchsrv"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const devJWTSecret = "talentmatch-dev-secret-change-me"

type Container struct {
	Config config.Config

	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	S3Client   *s3.Client

	TokenService   auth.TokenService
	EmbeddingQueue *candidateinfra.RedisQueue

	Ranker          *matchsrv.Ranker
	ResumeService   *candidatesrv.ResumeService
	AnalysisService *analysissrv.Service
	EmbeddingWorker *worker.EmbeddingWorker

	MatchHandlers     *matchapi.Handlers
	CandidateHandlers *candidateapi.Handlers
	AnalysisHandlers  *analysisapi.Handlers

	UnifiedAuthMiddleware *auth.UnifiedAuthMiddleware
}

func NewContainer(cfg config.Config) *Container {
	c := &Container{Config: cfg}
	c.initInfrastructure()
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	// --- Postgres ---
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	c.DB = db

	// --- Redis ---
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Warnf("Failed to connect to Redis: %v", err)
	}

	// --- Document storage ---
	storage := c.Config.Storage
	switch storage.Driver {
	case "local":
		if err := os.MkdirAll(storage.LocalDir, 0o755); err != nil {
			logx.Fatalf("Failed to create storage dir %s: %v", storage.LocalDir, err)
		}
		localFS, err := fsxlocal.NewLocalFileSystem(storage.LocalDir)
		if err != nil {
			logx.Fatalf("Failed to open local storage: %v", err)
		}
		c.FileSystem = localFS
	default:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(storage.Region))
		if err != nil {
			logx.Fatalf("unable to load SDK config, %v", err)
		}
		c.S3Client = s3.NewFromConfig(awsCfg)
		c.FileSystem = fsxs3.NewS3FileSystem(c.S3Client, storage.Bucket, storage.Prefix)
	}
	logx.Infof("Document storage: %s", storage.Driver)
}

func (c *Container) initServices() {
	cfg := c.Config

	// --- Repositories ---
	jobRepo := jobinfra.NewPostgresJobRepository(c.DB)
	candidateRepo := candidateinfra.NewPostgresCandidateRepository(c.DB)
	analysisRepo := analysisinfra.NewPostgresAnalysisRepository(c.DB)
	matchCache := matchinfra.NewRedisCache(
		c.Redis,
		matchinfra.NewPostgresCache(c.DB),
		cfg.Redis.MatchCacheTTL,
	)
	c.EmbeddingQueue = candidateinfra.NewRedisQueue(c.Redis, cfg.Redis.QueueName)

	// --- Providers ---
	embedder := embeddings.NewEmbeddingsGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	analyzer := docanalyzer.NewAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)

	// --- Auth ---
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		logx.Warn("JWT_SECRET is not set, using default (unsafe for production)")
		secret = devJWTSecret
	}
	c.TokenService = auth.NewJWTTokenService(secret, cfg.Auth.Issuer)
	c.UnifiedAuthMiddleware = auth.NewUnifiedAuthMiddleware(c.TokenService)

	// --- Services ---
	c.Ranker = matchsrv.NewRanker(jobRepo, candidateRepo, matchCache, embedder, matchsrv.Options{
		PoolCap:        cfg.Matching.PoolCap,
		BatchSize:      cfg.Matching.BatchSize,
		MinScore:       cfg.Matching.MinScore,
		TopK:           cfg.Matching.TopK,
		Workers:        cfg.Matching.Workers,
		EmbedTimeout:   cfg.Matching.EmbedTimeout,
		ComputeTimeout: cfg.Matching.ComputeTimeout,
	})
	c.ResumeService = candidatesrv.NewResumeService(
		candidateRepo,
		c.FileSystem,
		c.EmbeddingQueue,
		embedder,
		cfg.Worker.MaxAttempts,
	)
	c.AnalysisService = analysissrv.NewService(
		jobRepo,
		c.FileSystem,
		analyzer,
		analysisRepo,
		cfg.Matching.AnalyzeTimeout,
	)
	c.EmbeddingWorker = worker.NewEmbeddingWorker(c.ResumeService, c.EmbeddingQueue, cfg.Worker.EmbedWorkers)

	// --- Handlers ---
	c.MatchHandlers = matchapi.NewHandlers(c.Ranker)
	c.CandidateHandlers = candidateapi.NewHandlers(c.ResumeService)
	c.AnalysisHandlers = analysisapi.NewHandlers(c.AnalysisService)
}

// Close releases the database and Redis connections
func (c *Container) Close() {
	if err := c.DB.Close(); err != nil {
		logx.Errorf("Failed to close database: %v", err)
	}
	if err := c.Redis.Close(); err != nil {
		logx.Errorf("Failed to close Redis: %v", err)
	}
}
