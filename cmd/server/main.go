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

	"ironclub/gym-portal/internal/api"
	"ironclub/gym-portal/internal/config"
	"ironclub/gym-portal/internal/plangen"
	mongoRepo "ironclub/gym-portal/internal/repository/mongo"
	"ironclub/gym-portal/internal/service"
	"ironclub/gym-portal/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Gym Portal Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongoRepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongoRepo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongoRepo.EnsureAccountIndexes(ctx, appDB.Collection("accounts"))
		mongoRepo.EnsureAdminRegistryIndexes(ctx, appDB.Collection("admin_registry"))
		mongoRepo.EnsureCoachClientIndexes(ctx, appDB.Collection("coach_client_links"))
		mongoRepo.EnsureWorkoutPlanIndexes(ctx, appDB.Collection("workout_plans"), appDB.Collection("workout_plan_items"))
		mongoRepo.EnsureNutritionPlanIndexes(ctx, appDB.Collection("nutrition_plans"), appDB.Collection("nutrition_plan_items"))
		mongoRepo.EnsureAssignmentIndexes(ctx, appDB.Collection("user_workout_plans"), appDB.Collection("user_nutrition_plans"))
		log.Println("Index creation process completed.")
	}()

	// --- Optional transcript archive ---
	var archive storage.TranscriptArchive
	if cfg.S3.BucketName != "" {
		log.Println("Initializing generation transcript archive...")
		archive, err = storage.NewS3Archive(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 archive: %v", err)
		}
	} else {
		log.Println("No S3 bucket configured, transcript archiving disabled.")
	}

	// --- Optional external generator ---
	var generator plangen.Generator
	if cfg.OpenAI.APIKey != "" {
		log.Printf("External plan generator enabled (model %s).", cfg.OpenAI.Model)
		generator = plangen.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Println("No generator credential configured, using deterministic fallback only.")
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	accountRepo := mongoRepo.NewMongoAccountRepository(appDB)
	adminRegistryRepo := mongoRepo.NewMongoAdminRegistryRepository(appDB)
	coachClientRepo := mongoRepo.NewMongoCoachClientRepository(appDB)
	workoutPlanRepo := mongoRepo.NewMongoWorkoutPlanRepository(appDB)
	nutritionPlanRepo := mongoRepo.NewMongoNutritionPlanRepository(appDB)
	assignmentRepo := mongoRepo.NewMongoAssignmentRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	resolverService := service.NewResolverService(accountRepo, adminRegistryRepo, coachClientRepo)
	assignmentService := service.NewAssignmentService(accountRepo, coachClientRepo, assignmentRepo, workoutPlanRepo, nutritionPlanRepo)
	planService := service.NewPlanService(workoutPlanRepo, nutritionPlanRepo, assignmentRepo)
	generationService := service.NewGenerationService(workoutPlanRepo, nutritionPlanRepo, assignmentRepo, coachClientRepo, generator, archive, cfg.OpenAI.Timeout)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, resolverService, assignmentService, planService, generationService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
