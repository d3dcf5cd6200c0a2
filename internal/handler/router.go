package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/spectra-quiz/internal/middleware"
	"github.com/yourusername/spectra-quiz/internal/service"
	"github.com/yourusername/spectra-quiz/internal/service/quizmanager"
)

// maxLeaderboardQuery - верхняя граница ?limit=; дальше лимит приводит сервис
const maxLeaderboardQuery = 1000

// RouterConfig содержит обработчики и middleware для NewRouter
type RouterConfig struct {
	AllowedOrigins []string
	AssetDir       string

	Quiz        *QuizHandler
	Leaderboard *LeaderboardHandler
	Admin       *AdminHandler
	WS          *WSHandler // может быть nil

	Session   *middleware.SessionMiddleware
	AdminAuth *middleware.AdminAuthMiddleware
	RateLimit *middleware.RateLimiter // nil - без ограничения
	QuizLimit middleware.RateLimitConfig
}

// NewRouter собирает gin.Engine со всеми маршрутами
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		// Без списка origin cookie сессии между доменами не передаётся
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	// Изображения спектров
	if cfg.AssetDir != "" {
		router.Static("/assets", cfg.AssetDir)
	}

	limit := func() gin.HandlerFunc {
		if cfg.RateLimit == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return cfg.RateLimit.Limit(cfg.QuizLimit)
	}

	api := router.Group("/api")
	{
		quiz := api.Group("/quiz", cfg.Session.Handle())
		{
			quiz.POST("/start", limit(), cfg.Quiz.Start)
			quiz.GET("/current", cfg.Quiz.Current)
			quiz.POST("/answer", limit(), cfg.Quiz.Answer)
			quiz.POST("/next", cfg.Quiz.Next)
			quiz.POST("/restart", cfg.Quiz.Restart)
			quiz.GET("/history", cfg.Quiz.History)
			quiz.GET("/spectrum",
				middleware.ExtractIntQuery("points", PointsKey, quizmanager.MaxSpectrumPoints),
				cfg.Quiz.Spectrum)
		}

		api.GET("/leaderboard",
			middleware.ExtractIntQuery("limit", LimitKey, maxLeaderboardQuery),
			cfg.Leaderboard.GetLeaderboard)

		admin := api.Group("/admin")
		{
			login := []gin.HandlerFunc{cfg.Admin.Login}
			if cfg.RateLimit != nil {
				login = append([]gin.HandlerFunc{cfg.RateLimit.Limit(middleware.StrictAdminRateLimitConfig())}, login...)
			}
			admin.POST("/login", login...)

			protected := admin.Group("", cfg.AdminAuth.RequireAdmin())
			{
				protected.DELETE("/data", cfg.Admin.ClearData)
				protected.GET("/leaderboard/export", cfg.Admin.ExportLeaderboard)
				protected.GET("/bank", cfg.Admin.GetBank)
			}
		}
	}

	if cfg.WS != nil {
		router.GET("/ws/leaderboard", cfg.WS.HandleConnection)
		router.GET("/ws/health", cfg.WS.Health)
	}

	return router
}

var (
	_ QuizRunner        = (*quizmanager.Manager)(nil)
	_ LeaderboardReader = (*service.LeaderboardService)(nil)
	_ AdminOperations   = (*service.AdminService)(nil)
)
