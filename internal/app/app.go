package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduai_backend/internal/config"
	"eduai_backend/internal/controller"
	"eduai_backend/internal/repository"
	"eduai_backend/internal/service"
	"eduai_backend/internal/util"
	"eduai_backend/pkg/database"
	"eduai_backend/pkg/logger"
	"eduai_backend/pkg/monitoring"
	"eduai_backend/pkg/security"
	"eduai_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	category     *repository.CategoryRepository
	course       *repository.CourseRepository
	enrollment   *repository.EnrollmentRepository
	assessment   *repository.AssessmentRepository
	attempt      *repository.AttemptRepository
	gamification *repository.GamificationRepository
	achievement  *repository.AchievementRepository
	certificate  *repository.CertificateRepository
	roadmap      *repository.RoadmapRepository
}

type services struct {
	auth           *service.AuthService
	user           *service.UserService
	storage        *service.StorageService
	media          *service.MediaService
	gamification   *service.GamificationService
	achievement    *service.AchievementService
	certificate    *service.CertificateService
	course         *service.CourseService
	assessment     *service.AssessmentService
	analytics      *service.AnalyticsService
	recommendation *service.RecommendationService
	dashboard      *service.DashboardService
	roadmap        *service.RoadmapService
}

type controllers struct {
	auth           *controller.AuthController
	user           *controller.UserController
	course         *controller.CourseController
	category       *controller.CategoryController
	assessment     *controller.AssessmentController
	gamification   *controller.GamificationController
	achievement    *controller.AchievementController
	analytics      *controller.AnalyticsController
	recommendation *controller.RecommendationController
	dashboard      *controller.DashboardController
	roadmap        *controller.RoadmapController
	certificate    *controller.CertificateController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload 配置热更新后刷新运行期可调参数，排行榜长度和缓存时长即时生效
func (a *App) OnConfigReload(newCfg *config.Config) {
	a.Config.Leaderboard = newCfg.Leaderboard
	logger.Log.Info("Config reloaded",
		zap.Int("leaderboard_size", newCfg.Leaderboard.Size),
		zap.Int("leaderboard_cache_ttl", newCfg.Leaderboard.CacheTTLSeconds))
	for _, callback := range a.configCallbacks {
		callback(newCfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		category:     repository.NewCategoryRepository(db),
		course:       repository.NewCourseRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		gamification: repository.NewGamificationRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		certificate:  repository.NewCertificateRepository(db),
		roadmap:      repository.NewRoadmapRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage, cfg)
	s.auth = service.NewAuthService(repos.user, repos.gamification, cfg)
	s.user = service.NewUserService(repos.user)

	// 游戏化是成就、测评和课程的底座，先于它们初始化
	s.gamification = service.NewGamificationService(repos.gamification, rdb, cfg)
	s.achievement = service.NewAchievementService(
		repos.achievement,
		repos.attempt,
		repos.enrollment,
		repos.gamification,
		s.gamification,
	)
	s.certificate = service.NewCertificateService(repos.certificate, repos.user, repos.course)

	s.course = service.NewCourseService(
		repos.course,
		repos.category,
		repos.enrollment,
		s.gamification,
		s.achievement,
		s.certificate,
	)
	s.assessment = service.NewAssessmentService(
		repos.assessment,
		repos.attempt,
		s.gamification,
		s.achievement,
	)

	s.analytics = service.NewAnalyticsService(repos.attempt)
	s.recommendation = service.NewRecommendationService(
		repos.course,
		repos.enrollment,
		repos.attempt,
		repos.gamification,
	)
	s.dashboard = service.NewDashboardService(
		repos.enrollment,
		repos.attempt,
		repos.achievement,
		repos.certificate,
		s.gamification,
		s.recommendation,
	)
	s.roadmap = service.NewRoadmapService(repos.roadmap)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:           controller.NewAuthController(s.auth, s.gamification),
		user:           controller.NewUserController(s.user, s.media),
		course:         controller.NewCourseController(s.course, s.media),
		category:       controller.NewCategoryController(s.course),
		assessment:     controller.NewAssessmentController(s.assessment),
		gamification:   controller.NewGamificationController(s.gamification, s.achievement),
		achievement:    controller.NewAchievementController(s.achievement),
		analytics:      controller.NewAnalyticsController(s.analytics),
		recommendation: controller.NewRecommendationController(s.recommendation),
		dashboard:      controller.NewDashboardController(s.dashboard),
		roadmap:        controller.NewRoadmapController(s.roadmap),
		certificate:    controller.NewCertificateController(s.certificate),
		health:         controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000 // 每分钟100000次请求
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, repos *repositories) {
	// 定期重算测评统计快照，修正并发提交造成的偏差
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			assessments, _, err := repos.assessment.List(1, 1000, "", "")
			if err != nil {
				logger.Log.Error("refresh statistics: list assessments", zap.Error(err))
				continue
			}
			for _, assessment := range assessments {
				if err := s.assessment.RefreshStatistics(assessment.ID); err != nil {
					logger.Log.Error("refresh statistics",
						zap.Uint("assessment_id", assessment.ID),
						zap.Error(err))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis 只承担排行榜缓存，连接失败时降级为直查数据库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("eduai-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		// 进程退出前统一关停，保证最后一批 Span 落盘
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type != util.StorageMinio {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
