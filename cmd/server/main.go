package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Namne2k3/fitness-web-app-sub001/internal/api"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/cache"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/config"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/memory"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/repository/mongo"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/service"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/session"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/storage"
	"github.com/Namne2k3/fitness-web-app-sub001/internal/stream"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	workouts  repository.WorkoutRepository
	sessions  repository.WorkoutSessionRepository
	close     func()
}

// @title Fitness Workout Session API
// @version 1.0
// @description Workout sessions, exercise library and progress history.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Starting Fitness App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatalf("FATAL: jwt.secret (JWT_SECRET) must be set")
	}
	log.Println("Configuration loaded.")

	// --- Repositories ---
	repos, err := openRepositories(cfg.Database)
	if err != nil {
		log.Fatalf("FATAL: Could not open %s repositories: %v", cfg.Database.Driver, err)
	}
	defer repos.close()

	// --- Redis (optional) ---
	redisClient, err := cache.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to Redis: %v", err)
	}
	if redisClient == nil {
		log.Println("WARN: redis.addr not set, using in-process token store and local-only streaming")
	} else {
		defer redisClient.Close()
	}

	// --- Storage (optional) ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		if fileStorage, err = storage.NewS3Storage(cfg.S3); err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("WARN: s3.bucket_name not set, avatar uploads are disabled")
	}

	hub := stream.NewHub(redisClient)
	paging := session.Paging{DefaultLimit: cfg.Sessions.DefaultPageSize, MaxLimit: cfg.Sessions.MaxPageSize}

	// --- Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(repos.users, cache.NewTokenStore(redisClient), cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshExpiration)
	profileService := service.NewProfileService(repos.users, cache.NewProfileCache(redisClient, cfg.Cache.ProfileTTL), fileStorage)
	exerciseService := service.NewExerciseService(repos.exercises, paging)
	workoutService := service.NewWorkoutService(repos.workouts, repos.exercises, paging)
	sessionService := service.NewWorkoutSessionService(repos.sessions, repos.workouts, session.NewLifecycle(nil), paging, hub)

	router := gin.Default()
	api.SetupRoutes(router, cfg.JWT.Secret, authService, profileService, exerciseService, workoutService, sessionService, hub)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop relaying events from other instances before draining requests.
	if err := hub.Close(); err != nil {
		log.Printf("ERROR: Closing session stream hub: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting.")
}

func openRepositories(cfg config.DatabaseConfig) (*repositories, error) {
	if cfg.Driver == config.DriverMemory {
		log.Println("WARN: using in-memory repositories, data is lost on restart")
		return &repositories{
			users:     memory.NewUserRepository(),
			exercises: memory.NewExerciseRepository(),
			workouts:  memory.NewWorkoutRepository(),
			sessions:  memory.NewWorkoutSessionRepository(),
			close:     func() {},
		}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	db := dbClient.Database(cfg.Name)
	log.Println("Database connection established.")

	// Index creation runs before serving so the single-active-session index is in place.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	mongo.EnsureIndexes(ctx, db)
	cancel()

	return &repositories{
		users:     mongo.NewMongoUserRepository(db),
		exercises: mongo.NewMongoExerciseRepository(db),
		workouts:  mongo.NewMongoWorkoutRepository(db),
		sessions:  mongo.NewMongoWorkoutSessionRepository(db),
		close: func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		},
	}, nil
}
