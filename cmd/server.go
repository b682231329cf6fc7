package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Abraxas-365/talentmatch/pkg/config"
	"github.com/Abraxas-365/talentmatch/pkg/errx"
	"github.com/Abraxas-365/talentmatch/pkg/logx"
	"github.com/Abraxas-365/talentmatch/recruitment/analysis/analysisapi"
	"github.com/Abraxas-365/talentmatch/recruitment/candidate/candidateapi"
	"github.com/Abraxas-365/talentmatch/recruitment/match/matchapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load configuration and initialize logger
	cfg, err := config.Load()
	if err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}
	logx.SetOutput(os.Stderr, strings.EqualFold(cfg.Server.LogFormat, "json"))
	logx.SetLevel(logx.ParseLevel(cfg.Server.LogLevel))
	logx.Info("Starting TalentMatch API Server...")

	// 2. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Close()

	// 3. Start background embedding workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	container.EmbeddingWorker.Start(workerCtx)

	// 4. Create Fiber App with Config
	app := fiber.New(fiber.Config{
		AppName:               "TalentMatch API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
	})

	// 5. Global Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, DELETE, HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// 6. Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status": "ok",
			"db":     container.DB.Ping() == nil,
			"redis":  container.Redis.Ping(c.Context()).Err() == nil,
		}
		if stats, err := container.EmbeddingQueue.Stats(c.Context()); err == nil {
			resp["embedding_queue"] = stats
		}
		return c.JSON(resp)
	})

	// 7. Register Routes

	// Ranking: /api/jobs/:id/candidates, /api/jobs/:id/matches
	matchapi.RegisterRoutes(app, container.MatchHandlers, container.UnifiedAuthMiddleware)

	// Résumé analysis: /api/jobs/:id/resume-analysis
	analysisapi.RegisterRoutes(app, container.AnalysisHandlers, container.UnifiedAuthMiddleware)

	// Résumé upload: /api/candidates/:id/resume
	candidateapi.RegisterRoutes(app, container.CandidateHandlers, container.UnifiedAuthMiddleware)

	// 8. Start Server with Graceful Shutdown
	port := cfg.Server.Port

	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	logx.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	container.EmbeddingWorker.Wait()

	logx.Info("Server exited")
}

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber errors, e.g. route not found
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
			"code":  fe.Code,
		})
	}

	if e, ok := errx.As(err); ok {
		if e.HTTPStatus >= fiber.StatusInternalServerError {
			logx.Errorf("Request %s %s failed: %v", c.Method(), c.Path(), err)
		}
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	logx.Errorf("Internal Server Error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"type":    "INTERNAL",
		"code":    "INTERNAL_ERROR",
		"message": "An unexpected error occurred",
	})
}
