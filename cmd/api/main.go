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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizplay-api/internal/config"
	"github.com/yourusername/quizplay-api/internal/handler"
	"github.com/yourusername/quizplay-api/internal/middleware"
	pgRepo "github.com/yourusername/quizplay-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quizplay-api/internal/repository/redis"
	"github.com/yourusername/quizplay-api/internal/service"
	"github.com/yourusername/quizplay-api/pkg/auth"
	"github.com/yourusername/quizplay-api/pkg/database"
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

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	jokeRepo := pgRepo.NewJokeRepo(db)
	planRepo := pgRepo.NewPlanRepo(db)
	resetRepo := pgRepo.NewPasswordResetRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}
	leaderboardRepo, err := redisRepo.NewLeaderboardRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize LeaderboardRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Отправка почты: без API-ключа коды сброса пишутся в лог
	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
	} else {
		log.Println("Email disabled, using noop email service")
		emailService = &service.NoopEmailService{}
	}

	// Инициализируем сервисы
	playService := service.NewPlayService(
		questionRepo, categoryRepo, attemptRepo, jokeRepo, leaderboardRepo, cacheRepo,
		time.Duration(cfg.Quiz.StartCacheTTLSec)*time.Second,
	)
	accessService := service.NewAccessService(userRepo, planRepo, categoryRepo, cfg.Quiz.PremiumPlanName)
	statsService := service.NewStatsService(attemptRepo, userRepo, leaderboardRepo, accessService)
	authService := service.NewAuthService(
		userRepo, resetRepo, emailService, jwtService,
		time.Duration(cfg.Quiz.OTPExpiryMin)*time.Minute,
	)
	quizService := service.NewQuizService(categoryRepo, questionRepo, jokeRepo, planRepo, cacheRepo)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	playHandler := handler.NewPlayHandler(playService)
	statsHandler := handler.NewStatsHandler(statsService)
	quizHandler := handler.NewQuizHandler(quizService, accessService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	accessMiddleware := middleware.NewAccessMiddleware(accessService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Контекст приложения для фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())

	// Фоновая сверка лидерборда с попытками
	if cfg.Quiz.ReconcileIntervalMin > 0 {
		go func() {
			interval := time.Duration(cfg.Quiz.ReconcileIntervalMin) * time.Minute
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			log.Printf("Запуск фоновой сверки лидерборда (каждые %s)", interval)
			for {
				select {
				case <-ticker.C:
					if err := playService.ReconcileLeaderboard(); err != nil {
						log.Printf("Ошибка сверки лидерборда: %v", err)
					}
				case <-ctx.Done():
					log.Println("Завершение работы горутины сверки лидерборда")
					return
				}
			}
		}()
	}

	// Ежечасная очистка протухших OTP-кодов
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				authService.CleanupExpiredResetCodes()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам.
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining", "Retry-After", "X-Leaderboard-Stale"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)

			otpLimit := rateLimiter.Limit(middleware.OTPRateLimitConfig())
			authGroup.POST("/forgot-password", otpLimit, authHandler.ForgotPassword)
			authGroup.POST("/verify-code", otpLimit, authHandler.VerifyCode)
			authGroup.POST("/reset-password", otpLimit, authHandler.ResetPassword)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/change-password", authHandler.ChangePassword)
			}
		}

		// Пользователи
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", authHandler.Me)
			users.PUT("/me", authHandler.UpdateProfile)
			users.POST("/me/subscribe", quizHandler.Subscribe)
			users.POST("/me/unsubscribe", quizHandler.Unsubscribe)
		}

		// Тарифные планы (список публичный, управление только администраторам)
		plans := api.Group("/plans")
		{
			plans.GET("", quizHandler.ListPlans)

			adminPlans := plans.Group("")
			adminPlans.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminPlans.POST("", quizHandler.CreatePlan)

				planWithID := adminPlans.Group("/:id")
				planWithID.Use(middleware.ExtractUintParam("id", "planID"))
				{
					planWithID.PUT("", quizHandler.UpdatePlan)
					planWithID.DELETE("", quizHandler.DeletePlan)
				}
			}
		}

		// Категории и игра
		categories := api.Group("/categories")
		{
			categories.GET("", quizHandler.ListCategories)

			categoryWithID := categories.Group("/:categoryId")
			categoryWithID.Use(middleware.ExtractUintParam("categoryId", "categoryID"))
			{
				categoryWithID.GET("", quizHandler.GetCategory)

				// Игровые маршруты: аутентификация + проверка тарифа
				playRoutes := categoryWithID.Group("")
				playRoutes.Use(authMiddleware.RequireAuth(), accessMiddleware.RequireCategoryAccess())
				{
					playRoutes.GET("/start", playHandler.StartQuiz)
					playRoutes.POST("/submit",
						rateLimiter.Limit(middleware.SubmitRateLimitConfig()),
						playHandler.SubmitAnswer)
				}

				// Администрирование вопросов категории
				adminCategory := categoryWithID.Group("")
				adminCategory.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
				{
					adminCategory.PUT("", quizHandler.UpdateCategory)
					adminCategory.DELETE("", quizHandler.DeleteCategory)
					adminCategory.POST("/questions", quizHandler.CreateQuestion)
					adminCategory.POST("/questions/batch", quizHandler.CreateQuestions)
					adminCategory.POST("/questions/import", quizHandler.ImportQuestions)
				}
			}

			adminCreateCategory := categories.Group("")
			adminCreateCategory.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
			{
				adminCreateCategory.POST("", quizHandler.CreateCategory)
			}
		}

		// Управление отдельными вопросами
		questions := api.Group("/questions")
		questions.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			questionWithID := questions.Group("/:id")
			questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				questionWithID.PUT("", quizHandler.UpdateQuestion)
				questionWithID.PATCH("/active", quizHandler.SetQuestionActive)
				questionWithID.DELETE("", quizHandler.DeleteQuestion)
			}
		}

		// Шутки (бонусный контент)
		jokes := api.Group("/jokes")
		jokes.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			jokes.GET("", quizHandler.ListJokes)
			jokes.POST("", quizHandler.CreateJoke)

			jokeWithID := jokes.Group("/:id")
			jokeWithID.Use(middleware.ExtractUintParam("id", "jokeID"))
			{
				jokeWithID.DELETE("", quizHandler.DeleteJoke)
			}
		}

		// Статистика и лидерборд
		stats := api.Group("/stats")
		stats.Use(authMiddleware.RequireAuth())
		{
			stats.GET("/overview", statsHandler.GetOverview)
			stats.GET("/categories", statsHandler.GetCategoryBreakdown)
			stats.GET("/standing", statsHandler.GetStanding)
			stats.GET("/attempts", statsHandler.GetRecentAttempts)

			attemptWithID := stats.Group("/attempts/:id")
			attemptWithID.Use(middleware.ExtractUintParam("id", "attemptID"))
			{
				attemptWithID.GET("", statsHandler.GetAttempt)
			}
		}

		api.GET("/leaderboard", authMiddleware.RequireAuth(), statsHandler.GetLeaderboard)
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Завершаем фоновые горутины
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
