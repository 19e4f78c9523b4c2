package api

import (
	"log"
	"time"

	"github.com/chirotrack/backend/config"
	"github.com/chirotrack/backend/infra/queue"
	"github.com/chirotrack/backend/internal/api/rest/handlers"
	"github.com/chirotrack/backend/internal/clients/googleauth"
	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/helper"
	"github.com/chirotrack/backend/internal/repository"
	"github.com/chirotrack/backend/internal/services"
	"github.com/chirotrack/backend/pkg/cloudinary"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// corsConfig builds the CORS policy from config. Fiber refuses credentials
// combined with a wildcard origin, so credentials are only allowed once an
// explicit origin is configured.
func corsConfig(cfg config.Config) cors.Config {
	return cors.Config{
		AllowOrigins:     cfg.BaseURL,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: cfg.BaseURL != "*",
	}
}

func StartServer(cfg config.Config) {
	app := fiber.New()

	// ---------- CORS ----------
	app.Use(cors.New(corsConfig(cfg)))

	// ---------- DB ----------
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	log.Println("database connected")

	// ---------- MIGRATION (guarded by advisory lock) ----------
	const migrateLockID int64 = 20260830

	if err := db.Exec("SELECT pg_advisory_lock(?)", migrateLockID).Error; err != nil {
		log.Fatalf("migration lock error: %v", err)
	}
	defer func() {
		_ = db.Exec("SELECT pg_advisory_unlock(?)", migrateLockID).Error
	}()

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Patient{},
		&domain.PoseDetection{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}
	log.Println("migration successful")

	// ---------- Infra ----------
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	kafkaProducer := queue.NewProducer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
	)

	cld, err := cloudinary.New(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("cloudinary init error: %v", err)
	}
	up := cloudinary.NewUploader(cld)

	googleVerifier := googleauth.New(cfg.GoogleClientID)

	authHelper := helper.SetupAuth(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	// ---------- Repositories ----------
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	poseRepo := repository.NewPoseRepository(db)
	blacklist := repository.NewTokenBlacklist(redisClient)

	// ---------- Services ----------
	authSvc := services.NewAuthService(
		userRepo,
		blacklist,
		authHelper,
		googleVerifier,
		kafkaProducer,
		cfg.TolerateMailFailure,
	)
	patientSvc := services.NewPatientService(patientRepo)
	poseSvc := services.NewPoseService(poseRepo, patientRepo)
	userSvc := services.NewUserService(userRepo, authHelper, up)

	// ---------- Handlers ----------
	handlers.NewAuthHandler(authSvc).SetupRoutes(app)
	handlers.NewPatientHandler(patientSvc, authSvc).SetupRoutes(app)
	handlers.NewPoseHandler(poseSvc, authSvc).SetupRoutes(app)
	handlers.NewUserHandler(userSvc, authSvc).SetupRoutes(app)

	// ---------- Health ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// ---------- Listen ----------
	addr := cfg.ServerPort
	log.Println("listening on", addr)
	log.Fatal(app.Listen(addr))
}
