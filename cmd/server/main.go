package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/masykurm/talent-scout/internal/config"
	"github.com/masykurm/talent-scout/internal/domain/fiber/handler"
	"github.com/masykurm/talent-scout/internal/logger"
	"github.com/masykurm/talent-scout/internal/middleware"
	"github.com/masykurm/talent-scout/internal/model"
	"github.com/masykurm/talent-scout/internal/repository"
	"github.com/masykurm/talent-scout/internal/service"
	"github.com/masykurm/talent-scout/internal/usecase"
	"github.com/masykurm/talent-scout/internal/worker"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	zlog, err := logger.New(appConfig.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		// Room for a 5MB resume upload plus multipart overhead.
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"error": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db := ConnectDB()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	researchRepo := repository.NewResearchRepository(db)

	perplexity := service.NewPerplexityService(zlog)

	// Gemini is optional: without a key the default Perplexity backend still
	// works, only gemini-prefixed models and summary embeddings are off.
	var geminiClient usecase.EmbeddingClient
	if gemini, err := service.NewGeminiService(ctx, zlog); err != nil {
		zlog.Warn("gemini backend disabled", zap.Error(err))
	} else {
		geminiClient = gemini
	}

	pool := worker.NewPool(appConfig.ResearchWorkers, zlog)

	// Each research task gets its own database session so concurrent tasks
	// never share one with each other or with the spawning request.
	taskStores := func() usecase.TaskStores {
		session := db.Session(&gorm.Session{NewDB: true})
		return usecase.TaskStores{
			Research:   repository.NewResearchRepository(session),
			Candidates: repository.NewCandidateRepository(session),
		}
	}

	accountUC := usecase.NewAccountUsecase(userRepo, zlog)
	projectUC := usecase.NewProjectUsecase(projectRepo, candidateRepo, zlog)
	researchUC := usecase.NewResearchUsecase(
		researchRepo, candidateRepo, projectRepo, userRepo,
		taskStores, perplexity, geminiClient, pool, zlog,
	)

	auth := middleware.Auth(userRepo)
	handler.NewAuthHandler(accountUC).RegisterRoutes(app, auth)
	handler.NewProjectHandler(projectUC).RegisterRoutes(app, auth)
	handler.NewResearchHandler(researchUC).RegisterRoutes(app, auth)

	// Monitor goroutine count
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			zlog.Debug("runtime stats",
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("active_research_tasks", pool.Active()),
			)
		}
	}()

	zlog.Info("server running", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		dbConfig.Host,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Name,
		dbConfig.Port,
		dbConfig.SSLMode,
		dbConfig.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if appConfig.Env != "production" {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	// uuid_generate_v4 defaults and the candidate embedding column need
	// these extensions in place before migration.
	db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`)
	db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)

	err = db.AutoMigrate(
		&model.User{},
		&model.UserSettings{},
		&model.Project{},
		&model.Candidate{},
		&model.Research{},
	)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
