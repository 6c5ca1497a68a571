package app

import (
	"eduai_backend/docs"
	"eduai_backend/internal/config"
	"eduai_backend/internal/middleware"
	"eduai_backend/internal/model"

	"eduai_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 讲师相关接口
		a.registerInstructorRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 课程目录对游客开放，登录用户附带报名状态
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(a.Config), c.course.GetCourse)
		public.GET("/courses/:id/ratings", c.course.ListRatings)
		public.GET("/categories", c.category.ListCategories)

		// 证书验证和排行榜公开访问
		public.GET("/certificates/verify/:serial", c.certificate.VerifyCertificate)
		public.GET("/leaderboard", middleware.TryAuthMiddleware(a.Config), c.gamification.GetLeaderboard)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.PUT("/user/password", c.user.ChangePassword)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)

	// 课程学习
	rg.POST("/courses/:id/enroll", c.course.Enroll)
	rg.GET("/enrollments", c.course.MyEnrollments)
	rg.POST("/courses/:id/modules/:moduleId/complete", c.course.CompleteModule)
	rg.POST("/courses/:id/ratings", c.course.RateCourse)

	// 技能测评
	rg.GET("/assessments", c.assessment.ListAssessments)
	rg.GET("/assessments/attempts", c.assessment.MyAttempts)
	rg.GET("/assessments/attempts/:attemptId", c.assessment.GetAttempt)
	rg.GET("/assessments/:id", c.assessment.GetAssessment)
	rg.GET("/assessments/:id/attempts", c.assessment.MyAssessmentAttempts)
	rg.POST("/assessments/:id/start", c.assessment.StartAttempt)
	rg.POST("/assessments/:id/submit", c.assessment.SubmitAttempt)

	// 游戏化
	rg.GET("/gamification", c.gamification.GetProfile)
	rg.POST("/gamification/streak", c.gamification.RecordStreak)
	rg.GET("/gamification/streak", c.gamification.GetStreak)
	rg.GET("/gamification/xp", c.gamification.ListXPEvents)
	rg.GET("/gamification/achievements", c.achievement.GetOverview)
	rg.GET("/gamification/badges", c.achievement.ListBadges)

	// 分析与推荐
	rg.GET("/skill-analysis", c.analytics.GetSkillAnalysis)
	rg.GET("/recommendations", c.recommendation.GetRecommendations)
	rg.GET("/dashboard", c.dashboard.GetDashboard)

	// 学习路线
	rg.GET("/roadmaps", c.roadmap.ListRoadmaps)
	rg.POST("/roadmaps", c.roadmap.CreateRoadmap)
	rg.GET("/roadmaps/:id", c.roadmap.GetRoadmap)
	rg.PUT("/roadmaps/:id", c.roadmap.UpdateRoadmap)
	rg.DELETE("/roadmaps/:id", c.roadmap.DeleteRoadmap)
	rg.POST("/roadmaps/:id/steps", c.roadmap.AddStep)
	rg.PUT("/roadmaps/:id/steps/reorder", c.roadmap.ReorderSteps)
	rg.PUT("/roadmaps/:id/steps/:stepId", c.roadmap.UpdateStep)
	rg.DELETE("/roadmaps/:id/steps/:stepId", c.roadmap.DeleteStep)

	// 证书
	rg.GET("/certificates", c.certificate.ListCertificates)
	rg.GET("/certificates/:id", c.certificate.GetCertificate)
}

func (a *App) registerInstructorRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := rg.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		// 课程管理
		instructor.POST("/courses", c.course.CreateCourse)
		instructor.GET("/courses", c.course.MyCourses)
		instructor.PUT("/courses/:id", c.course.UpdateCourse)
		instructor.DELETE("/courses/:id", c.course.DeleteCourse)
		instructor.POST("/courses/:id/publish", c.course.PublishCourse)
		instructor.POST("/courses/thumbnail", c.course.UploadThumbnail)

		// 章节管理
		instructor.POST("/courses/:id/modules", c.course.AddModule)
		instructor.PUT("/courses/:id/modules/reorder", c.course.ReorderModules)
		instructor.PUT("/modules/:moduleId", c.course.UpdateModule)
		instructor.DELETE("/modules/:moduleId", c.course.DeleteModule)
		instructor.POST("/modules/video", c.course.UploadModuleVideo)

		// 测评管理
		instructor.POST("/assessments", c.assessment.CreateAssessment)
		instructor.GET("/assessments", c.assessment.MyAssessments)
		instructor.PUT("/assessments/:id", c.assessment.UpdateAssessment)
		instructor.DELETE("/assessments/:id", c.assessment.DeleteAssessment)
		instructor.POST("/assessments/:id/publish", c.assessment.PublishAssessment)

		// 题目管理
		instructor.POST("/assessments/:id/questions", c.assessment.AddQuestion)
		instructor.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		instructor.PUT("/questions/:questionId", c.assessment.UpdateQuestion)
		instructor.DELETE("/questions/:questionId", c.assessment.DeleteQuestion)

		// 答题与统计
		instructor.GET("/assessments/:id/attempts", c.assessment.ListAttempts)
		instructor.GET("/assessments/:id/statistics", c.assessment.GetStatistics)
		instructor.POST("/assessments/:id/refresh-stats", c.assessment.RefreshStatistics)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.user))
	{
		// 1. 用户列表和详情：允许管理员和讲师访问
		admin.GET("/users", middleware.RoleMiddleware(model.Admin, model.Instructor), c.user.GetUsers)
		admin.GET("/users/:id", middleware.RoleMiddleware(model.Admin, model.Instructor), c.user.GetUser)

		// 2. 其他所有接口：仅限管理员访问
		adminOnly := admin.Group("/")
		adminOnly.Use(middleware.RoleMiddleware(model.Admin))
		{
			adminOnly.PUT("/users/:id", c.user.UpdateUser)
			adminOnly.DELETE("/users/:id", c.user.DeleteUser)
			adminOnly.POST("/users/:id/reset-password", c.user.ResetPassword)
			adminOnly.POST("/users/:id/disable", c.user.DisableUser)

			adminOnly.POST("/categories", c.category.CreateCategory)
			adminOnly.PUT("/categories/:id", c.category.UpdateCategory)
			adminOnly.DELETE("/categories/:id", c.category.DeleteCategory)
		}
	}
}
