package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/studycards/backend/docs"
	"github.com/studycards/backend/internal/auth"
	"github.com/studycards/backend/internal/config"
	"github.com/studycards/backend/internal/handlers"
	"github.com/studycards/backend/internal/logger"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/middleware"
	"github.com/studycards/backend/internal/repositories"
	"github.com/studycards/backend/internal/services"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title StudyCards Progress API
// @version 1.0
// @description Learning-activity engine: study sessions, streaks, XP levels and guest migration

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting StudyCards Progress API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	rules, err := services.NewRules(cfg.Engine)
	if err != nil {
		logger.Logger.Fatal("Invalid engine configuration", zap.Error(err))
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	stopPoolStats := recordPoolStats(db.DB, m, 15*time.Second)
	defer stopPoolStats()

	// Initialize repositories
	store := repositories.NewStore(db, logger.Logger, cfg.Database.TxTimeout)
	accountRepo := repositories.NewAccountRepository(db, logger.Logger)
	sessionRepo := repositories.NewStudySessionRepository(db, logger.Logger)
	dailyRepo := repositories.NewDailyProgressRepository(db, logger.Logger)
	cardRepo := repositories.NewCardProgressRepository(db, logger.Logger)

	// Initialize services
	activityService := services.NewActivityService(store, accountRepo, sessionRepo, rules, m, logger.Logger)
	accountService := services.NewAccountService(store, accountRepo, sessionRepo, dailyRepo, rules, m, logger.Logger)
	sessionService := services.NewSessionService(store, accountRepo, sessionRepo, dailyRepo, cardRepo, rules, m, logger.Logger)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(accountService, logger.Logger)
	internalHandler := handlers.NewInternalHandler(activityService, accountService, logger.Logger)

	// Initialize auth middleware
	tokenValidator := auth.NewTokenValidator(cfg.JWT.Secret)
	authMiddleware := middleware.AuthMiddleware(tokenValidator)
	optionalAuthMiddleware := middleware.OptionalAuthMiddleware(tokenValidator)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)
	if cfg.APIKey == "" {
		logger.Logger.Warn("API_KEY is not set, internal endpoints will reject every call")
	}

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	r.Use(middleware.MetricsMiddleware(m))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r, optionalAuthMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
		internalHandler.RegisterRoutes(r, apiKeyMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "progress_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Try parent directory if running from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// recordPoolStats publishes the connection pool statistics every interval until the returned
// function is called
func recordPoolStats(db *sql.DB, m *metrics.Metrics, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				stats := db.Stats()
				m.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
