// Package main is the entry point for the Lead Management API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/white/lead-management/config"
	"github.com/white/lead-management/internal/cache"
	"github.com/white/lead-management/internal/events"
	"github.com/white/lead-management/internal/handlers"
	"github.com/white/lead-management/internal/middleware"
	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/repositories"
	"github.com/white/lead-management/internal/services"
	"github.com/white/lead-management/internal/utils"
	"github.com/white/lead-management/pkg/kafka"
	"github.com/white/lead-management/pkg/logger"
	"github.com/white/lead-management/pkg/mongodb"
	"github.com/white/lead-management/pkg/redisclient"
)

func main() {
	// Load environment variables (ignore error in dev)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// MongoDB
	mongoClient, err := mongodb.NewClient(mongodb.Config{
		URI:         cfg.MongoDB.URI,
		Database:    cfg.MongoDB.Database,
		MaxPoolSize: cfg.MongoDB.MaxPoolSize,
		MinPoolSize: cfg.MongoDB.MinPoolSize,
		MaxRetries:  cfg.MongoDB.MaxRetries,
	})
	if err != nil {
		zlog.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Close(context.Background())
	zlog.Info("connected to MongoDB", zap.String("database", cfg.MongoDB.Database))

	// Repositories
	leadRepo := repositories.NewMongoLeadRepository(mongoClient)
	userRepo := repositories.NewMongoUserRepository(mongoClient)
	activityRepo := repositories.NewMongoActivityRepository(mongoClient)
	commentRepo := repositories.NewMongoCommentRepository(mongoClient)
	reminderRepo := repositories.NewMongoReminderRepository(mongoClient)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndex()
	for name, ensure := range map[string]func(context.Context) error{
		"leads":      leadRepo.EnsureIndexes,
		"users":      userRepo.EnsureIndexes,
		"activities": activityRepo.EnsureIndexes,
		"comments":   commentRepo.EnsureIndexes,
		"reminders":  reminderRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			zlog.Fatal("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// Kafka (optional)
	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer, err = kafka.NewProducer(kafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.Kafka.ClientID,
			Username:      cfg.Kafka.Username,
			Password:      cfg.Kafka.Password,
			SSL:           cfg.Kafka.SSL,
			SASLMechanism: cfg.Kafka.SASLMechanism,
		})
		if err != nil {
			zlog.Fatal("failed to create Kafka producer", zap.Error(err))
		}
		defer kafkaProducer.Close()
	}
	auditPublisher := events.NewAuditPublisher(kafkaProducer, cfg.Kafka.AuditTopic, zlog)

	// Redis (optional)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewClient(redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			zlog.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zlog.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// Services
	activityService := services.NewActivityService(activityRepo, auditPublisher, zlog)
	idGenerator := services.NewLeadIDGenerator(leadRepo)
	usageLimiter := services.NewUsageLimiter(userRepo, leadRepo, services.QuotaConfig{
		TrialDays:       cfg.Quota.TrialDays,
		DefaultMaxLeads: cfg.Quota.DefaultMaxLeads,
		DefaultMaxUsers: cfg.Quota.DefaultMaxUsers,
	})
	leadService := services.NewLeadService(leadRepo, commentRepo, reminderRepo, activityService, idGenerator, usageLimiter, zlog)
	assignmentService := services.NewAssignmentService(leadRepo, userRepo, activityService, zlog)
	commentService := services.NewCommentService(commentRepo, leadRepo, userRepo, activityService, zlog)
	reminderService := services.NewReminderService(reminderRepo, leadRepo, userRepo, activityService, zlog)
	userService := services.NewUserService(userRepo, activityService, usageLimiter, zlog)
	teardownService := services.NewTeardownService(userRepo, leadRepo, activityRepo, commentRepo, reminderRepo, zlog)
	userCache := cache.NewUserCache(redisClient, zlog)
	assigneeResolver := services.NewAssigneeResolver(userRepo, userCache, zlog)

	// JWT
	jwtService, err := utils.NewJWTService(cfg.JWT.SharedSecret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	if err != nil {
		zlog.Fatal("failed to initialize JWT service", zap.Error(err))
	}

	// Handlers
	leadHandler := handlers.NewLeadHandler(leadService, assigneeResolver, zlog)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, zlog)
	commentHandler := handlers.NewCommentHandler(commentService, zlog)
	activityHandler := handlers.NewActivityHandler(activityService, zlog)
	reminderHandler := handlers.NewReminderHandler(reminderService, zlog)
	userHandler := handlers.NewUserHandler(userService, usageLimiter, zlog)
	tenantHandler := handlers.NewTenantHandler(teardownService, zlog)
	healthHandler := handlers.NewHealthHandler(mongoClient)

	// Rate limiter: cluster-wide when Redis is on, per-process otherwise
	var rateLimiter middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
	} else {
		rateLimiter = middleware.NewMemoryRateLimiter(cfg.RateLimit.RequestsPerMinute)
	}

	// Router
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"Endpoint not found"}}`))
	})

	router.HandleFunc("/health", healthHandler.GetOverallHealth).Methods("GET", "OPTIONS")

	// Swagger UI endpoint - API documentation
	router.PathPrefix("/swagger").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+cfg.Server.Port+"/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	// API v1 routes (authenticated + rate limited)
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTAuth(jwtService))
	api.Use(middleware.RateLimit(rateLimiter, zlog))

	// Leads
	api.HandleFunc("/leads", leadHandler.CreateLead).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads", leadHandler.ListLeads).Methods("GET")
	api.HandleFunc("/leads/check-email", leadHandler.CheckEmail).Methods("GET", "OPTIONS")
	api.HandleFunc("/leads/bulk-status", leadHandler.BulkChangeStatus).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads/bulk-delete", leadHandler.BulkDeleteLeads).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads/bulk-assign", assignmentHandler.BulkAssign).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads/bulk-unassign", assignmentHandler.BulkUnassign).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads/{id}", leadHandler.GetLead).Methods("GET", "OPTIONS")
	api.HandleFunc("/leads/{id}", leadHandler.UpdateLead).Methods("PATCH")
	api.HandleFunc("/leads/{id}/status", leadHandler.ChangeStatus).Methods("PUT", "OPTIONS")
	api.HandleFunc("/leads/{id}/assign", assignmentHandler.AssignLead).Methods("PUT", "OPTIONS")
	api.HandleFunc("/leads/{id}/unassign", assignmentHandler.UnassignLead).Methods("PUT", "OPTIONS")

	// Comments
	api.HandleFunc("/leads/{id}/comments", commentHandler.AddComment).Methods("POST", "OPTIONS")
	api.HandleFunc("/leads/{id}/comments", commentHandler.ListComments).Methods("GET")
	api.HandleFunc("/leads/{id}/comments/{commentId}", commentHandler.EditComment).Methods("PUT", "OPTIONS")
	api.HandleFunc("/leads/{id}/comments/{commentId}", commentHandler.DeleteComment).Methods("DELETE")

	// Activities
	api.HandleFunc("/leads/{id}/activities", activityHandler.ListLeadActivities).Methods("GET", "OPTIONS")
	api.HandleFunc("/activities", activityHandler.ListTenantActivities).Methods("GET", "OPTIONS")
	api.HandleFunc("/activities/stats", activityHandler.ActivityStats).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{userId}/activities", activityHandler.ListUserActivities).Methods("GET", "OPTIONS")

	// Reminders
	api.HandleFunc("/reminders", reminderHandler.CreateReminder).Methods("POST", "OPTIONS")
	api.HandleFunc("/reminders/due", reminderHandler.DueReminders).Methods("GET", "OPTIONS")
	api.HandleFunc("/reminders/{id}/snooze", reminderHandler.SnoozeReminder).Methods("PUT", "OPTIONS")
	api.HandleFunc("/reminders/{id}/complete", reminderHandler.CompleteReminder).Methods("PUT", "OPTIONS")
	api.HandleFunc("/reminders/{id}/dismiss", reminderHandler.DismissReminder).Methods("PUT", "OPTIONS")

	// Users
	api.HandleFunc("/users", userHandler.CreateAgent).Methods("POST", "OPTIONS")
	api.HandleFunc("/users", userHandler.ListAgents).Methods("GET")
	api.HandleFunc("/users/usage", userHandler.Usage).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET", "OPTIONS")
	api.HandleFunc("/users/{id}/activate", userHandler.ActivateAgent).Methods("PUT", "OPTIONS")
	api.HandleFunc("/users/{id}/deactivate", userHandler.DeactivateAgent).Methods("PUT", "OPTIONS")

	// Tenant lifecycle (admin self-delete or super admin)
	api.Handle("/tenants/{id}",
		middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)(
			http.HandlerFunc(tenantHandler.DeleteTenant))).Methods("DELETE", "OPTIONS")

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		zlog.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	if kafkaProducer != nil {
		kafkaProducer.Flush(5000)
	}

	zlog.Info("server stopped")
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowedOrigins := []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
