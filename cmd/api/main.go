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

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/spectra-quiz/internal/config"
	"github.com/yourusername/spectra-quiz/internal/domain/repository"
	"github.com/yourusername/spectra-quiz/internal/handler"
	"github.com/yourusername/spectra-quiz/internal/middleware"
	"github.com/yourusername/spectra-quiz/internal/repository/memory"
	redisRepo "github.com/yourusername/spectra-quiz/internal/repository/redis"
	"github.com/yourusername/spectra-quiz/internal/repository/sqlstore"
	"github.com/yourusername/spectra-quiz/internal/service"
	"github.com/yourusername/spectra-quiz/internal/service/batch"
	"github.com/yourusername/spectra-quiz/internal/service/questionbank"
	"github.com/yourusername/spectra-quiz/internal/service/quizmanager"
	ws "github.com/yourusername/spectra-quiz/internal/websocket"
	"github.com/yourusername/spectra-quiz/pkg/auth"
	"github.com/yourusername/spectra-quiz/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Банк вопросов собирается один раз; ошибка конфигурации банка фатальна
	bank, err := questionbank.Load(cfg.Bank)
	if err != nil {
		log.Printf("Failed to load question bank: %v", err)
		os.Exit(1)
	}
	log.Printf("Банк вопросов загружен: %d вопросов (источник %s)", bank.Len(), cfg.Bank.Source)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.Migrate(db, cfg.Database.Driver, cfg.Database.MigrationsDir); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Кеш: Redis для нескольких инстансов, память процесса для одного
	var (
		cacheRepo   repository.CacheRepository
		redisClient redis.UniversalClient
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient, err = database.NewUniversalRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")

		cacheRepo, err = redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
	default:
		cacheRepo = memory.NewCacheRepo()
	}

	// Инициализируем репозитории
	userRepo := sqlstore.NewUserRepo(db)
	answerRepo := sqlstore.NewAnswerRepo(db)
	sessionRepo := sqlstore.NewSessionRepo(db)
	batchRepo := sqlstore.NewBatchStateRepo(db)
	adminRepo := sqlstore.NewAdminRepo(db)

	// Инициализируем сервисы
	userService := service.NewUserService(userRepo, cfg.Quiz.MinNameLength)
	leaderboardService := service.NewLeaderboardService(cfg.Leaderboard, userRepo, sessionRepo, cacheRepo)

	// Хаб живого лидерборда
	wsHub := ws.NewHub()
	go wsHub.Run()
	if redisClient != nil {
		pubSub, err := ws.NewRedisPubSub(redisClient)
		if err != nil {
			log.Printf("Warning: Redis Pub/Sub unavailable, leaderboard updates stay local: %v", err)
		} else if err := wsHub.AttachRelay(pubSub); err != nil {
			log.Printf("Warning: failed to subscribe to leaderboard channel: %v", err)
		}
	}
	leaderboardService.SetPublisher(wsHub)

	var jwtService *auth.JWTService
	if cfg.Admin.JWTSecret != "" {
		jwtService, err = auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		if err != nil {
			log.Printf("Failed to initialize JWT service: %v", err)
			os.Exit(1)
		}
	} else {
		log.Printf("Warning: admin.jwt_secret не задан, административные маршруты отключены")
	}
	adminService := service.NewAdminService(adminRepo, jwtService, cfg.Admin.PasswordHash, leaderboardService)

	engine, err := quizmanager.NewEngine(quizmanager.Dependencies{
		Bank:      bank,
		Allocator: batch.NewAllocator(batchRepo),
		Players:   userService,
		Answers:   answerRepo,
		Sessions:  sessionRepo,
		Notifier:  leaderboardService,
		Config:    quizmanager.ConfigFrom(cfg.Quiz),
	})
	if err != nil {
		log.Printf("Failed to initialize quiz engine: %v", err)
		os.Exit(1)
	}
	runManager := quizmanager.NewManager(engine, quizmanager.NewRunStore(cacheRepo, cfg.Session.TTL))

	// Инициализируем обработчики и middleware
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cacheRepo)
	}

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AssetDir:       cfg.Bank.AssetDir,
		Quiz:           handler.NewQuizHandler(runManager),
		Leaderboard:    handler.NewLeaderboardHandler(leaderboardService),
		Admin:          handler.NewAdminHandler(adminService, leaderboardService, bank),
		WS:             handler.NewWSHandler(wsHub, leaderboardService, cfg.Server.AllowedOrigins),
		Session:        middleware.NewSessionMiddleware(cfg.Session),
		AdminAuth:      middleware.NewAdminAuthMiddleware(jwtService),
		RateLimit:      rateLimiter,
		QuizLimit:      middleware.QuizRateLimitConfig(cfg.RateLimit),
	})

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	wsHub.Stop()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}

	log.Println("Server exited properly")
}
