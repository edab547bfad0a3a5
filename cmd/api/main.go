// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/api/handlers"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/api/middleware"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/config"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/cron"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/db"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/email"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/metrics"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/notification"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/service"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/socket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Initialize PostgreSQL (optional, activity log)
	// ============================================
	var pgDB *db.PostgresDB
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		log.Println("🔄 Running database migrations...")
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}

		var err error
		pgDB, err = db.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
		}
		defer pgDB.Close()
		pool = pgDB.Pool
	} else {
		log.Println("⚠️  DATABASE_URL not set, activity log kept in memory")
	}

	// ============================================
	// Initialize Redis (optional, session snapshots)
	// ============================================
	var redisDB *db.RedisDB
	var sessionCache repository.SessionCache
	if cfg.RedisURL != "" {
		var err error
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing with in-memory sessions)", err)
		} else {
			defer redisDB.Close()
			sessionCache = redisDB
			log.Println("⚡ Redis session store enabled")
		}
	}

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(pool, sessionCache, cfg.SessionIdleTimeout)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Metrics
	// ============================================
	m := metrics.New(prometheus.DefaultRegisterer)

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Initialize Email Service
	// ============================================
	var sender email.Sender = email.LogSender{}
	if cfg.EmailEnabled() {
		sender = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("📧 Email delivery via Resend")
	} else {
		log.Println("⚠️  Email not configured (RESEND_API_KEY not set), logging emails instead")
	}
	emailSvc := email.NewService(sender, cfg.EmailFromName)
	emailQueue := email.NewQueue(emailSvc, 2)

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(notification.Options{
		Broadcaster:   broadcaster,
		Mailer:        emailQueue,
		Metrics:       m,
		ToastDuration: cfg.ToastDuration,
	})

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		Notifier: notificationSvc,
	})
	log.Println("✨ All services initialized")

	m.TrackGauge("active_sessions", "Live sessions held in memory", func() float64 {
		return float64(services.Sessions.ActiveCount())
	})
	m.TrackGauge("ws_clients", "Connected WebSocket clients", func() float64 {
		return float64(hub.GetConnectedClientsCount())
	})

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)
	wsHandler := socket.NewHandler(hub, services.Tokens, services.Sessions)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services.Sessions, notificationSvc, m, cfg.SessionIdleTimeout)
	cronScheduler.Start()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(m.GinMiddleware())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"timestamp":       time.Now(),
			"database":        getDatabaseStatus(pgDB),
			"cache":           getCacheStatus(redisDB),
			"websocket":       "active",
			"ws_clients":      hub.GetConnectedClientsCount(),
			"active_sessions": services.Sessions.ActiveCount(),
			"email":           getEmailStatus(cfg),
		})
	})

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	api.GET("/ws", wsHandler.HandleWebSocket)
	h.RegisterRoutes(api)

	// ============================================
	// Start Server
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// ============================================
	// Graceful Shutdown
	// ============================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server forced to shutdown: %v", err)
	}

	cronScheduler.Stop()
	services.Sessions.Shutdown()
	hub.Stop()
	emailQueue.Stop()

	log.Println("👋 Server exited")
}

func getDatabaseStatus(pgDB *db.PostgresDB) string {
	if pgDB != nil {
		return "connected"
	}
	return "memory"
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "memory"
}

func getEmailStatus(cfg *config.Config) string {
	if cfg.EmailEnabled() {
		return "resend"
	}
	return "log"
}
