package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnx_backend/internal/config"
	"learnx_backend/internal/controller"
	"learnx_backend/internal/repository"
	"learnx_backend/internal/service"
	"learnx_backend/internal/util"
	"learnx_backend/pkg/database"
	"learnx_backend/pkg/logger"
	"learnx_backend/pkg/monitoring"
	"learnx_backend/pkg/security"
	"learnx_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user         *repository.UserRepository
	track        *repository.TrackRepository
	module       *repository.ModuleRepository
	quiz         *repository.QuizRepository
	enrollment   *repository.EnrollmentRepository
	achievement  *repository.AchievementRepository
	discussion   *repository.DiscussionRepository
	review       *repository.ReviewRepository
	notification *repository.NotificationRepository
	aiQuestion   *repository.AIQuestionRepository
	invitation   *repository.InvitationRepository
}

type services struct {
	storage      *service.StorageService
	email        *service.EmailService
	hub          *service.NotificationHub
	notification *service.NotificationService
	gamification *service.GamificationService
	progress     *service.ProgressService
	quiz         *service.QuizService
	auth         *service.AuthService
	user         *service.UserService
	track        *service.TrackService
	module       *service.ModuleService
	discussion   *service.DiscussionService
	review       *service.ReviewService
	qa           *service.QAService
	admin        *service.AdminService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	track        *controller.TrackController
	module       *controller.ModuleController
	quiz         *controller.QuizController
	progress     *controller.ProgressController
	gamification *controller.GamificationController
	discussion   *controller.DiscussionController
	review       *controller.ReviewController
	notification *controller.NotificationController
	qa           *controller.QAController
	admin        *controller.AdminController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		track:        repository.NewTrackRepository(db),
		module:       repository.NewModuleRepository(db),
		quiz:         repository.NewQuizRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		discussion:   repository.NewDiscussionRepository(db),
		review:       repository.NewReviewRepository(db),
		notification: repository.NewNotificationRepository(db),
		aiQuestion:   repository.NewAIQuestionRepository(db),
		invitation:   repository.NewInvitationRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.email = service.NewEmailService(cfg.Email, logger.Log)

	s.hub = service.NewNotificationHub(rdb)
	go s.hub.Run()

	s.notification = service.NewNotificationService(repos.notification, s.hub)
	s.gamification = service.NewGamificationService(repos.achievement, repos.user, repos.enrollment, repos.quiz, s.notification, rdb)
	s.progress = service.NewProgressService(repos.module, repos.enrollment, repos.user, repos.track, s.gamification, s.notification, s.email)
	s.quiz = service.NewQuizService(repos.quiz, repos.module, repos.enrollment, s.progress)

	s.auth = service.NewAuthService(repos.user, repos.invitation, s.email, cfg)
	s.user = service.NewUserService(repos.user, repos.enrollment, repos.achievement, repos.track, s.storage)
	s.track = service.NewTrackService(repos.track, repos.module, repos.enrollment, s.gamification, s.storage, logger.Log)
	s.module = service.NewModuleService(repos.track, repos.module, repos.quiz, s.storage, logger.Log)
	s.discussion = service.NewDiscussionService(repos.discussion, repos.track, repos.enrollment, repos.user, s.notification, s.storage)
	s.review = service.NewReviewService(repos.review, repos.track, repos.enrollment, repos.user, s.notification, logger.Log)

	ai := service.NewAIService(cfg.AI)
	transcripts := service.NewTranscriptService(cfg.AI, logger.Log)
	s.qa = service.NewQAService(repos.module, repos.enrollment, repos.aiQuestion, ai, transcripts, s.storage, logger.Log)

	s.admin = service.NewAdminService(repos.user, repos.track, repos.enrollment, repos.invitation, s.notification)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		track:        controller.NewTrackController(s.track),
		module:       controller.NewModuleController(s.module),
		quiz:         controller.NewQuizController(s.quiz),
		progress:     controller.NewProgressController(s.progress),
		gamification: controller.NewGamificationController(s.gamification, repos.achievement),
		discussion:   controller.NewDiscussionController(s.discussion),
		review:       controller.NewReviewController(s.review),
		notification: controller.NewNotificationController(s.notification, s.hub),
		qa:           controller.NewQAController(s.qa),
		admin:        controller.NewAdminController(s.admin),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnx-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, services, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// ReloadConfig 应用热更新后的配置，仅覆盖可以安全热更的字段
func (a *App) ReloadConfig(newCfg *config.Config) {
	a.Config.JWT = newCfg.JWT
	a.Config.RateLimit = newCfg.RateLimit
	logger.Log.Info("配置已热更新")
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 断开WebSocket并清理Redis在线状态
	if a.services != nil && a.services.hub != nil {
		a.services.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
