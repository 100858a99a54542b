package app

import (
	"learnx_backend/docs"
	"learnx_backend/internal/config"
	"learnx_backend/internal/middleware"
	"learnx_backend/internal/model"
	"learnx_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)
	a.registerLearnerRoutes(router, c, s, cfg)
	a.registerCreatorRoutes(router, c, s, cfg)
	a.registerAdminRoutes(router, c, cfg)
}

// 公共路由：无需登录
func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/verify-email", c.auth.VerifyEmail)
		public.POST("/forgot-password", c.auth.ForgotPassword)
		public.POST("/reset-password", c.auth.ResetPassword)

		// 课程浏览允许游客访问，登录用户可看到自己未发布的课程
		public.GET("/tracks", c.track.List)
		public.GET("/tracks/:id", middleware.TryAuthMiddleware(cfg), c.track.Get)
		public.GET("/tracks/:id/modules", c.module.ListByTrack)
		public.GET("/tracks/:id/reviews", c.review.ListByTrack)
		public.GET("/tracks/:id/discussions", c.discussion.ListByTrack)
		public.GET("/tracks/:id/leaderboard", c.gamification.TrackLeaderboard)
		public.GET("/achievements", c.gamification.ListAchievements)
		public.GET("/leaderboard", c.gamification.GlobalLeaderboard)
	}
}

// 学习者路由：登录即可访问
func (a *App) registerLearnerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(s.gamification))
	{
		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.PUT("/user/password", c.user.ChangePassword)
		authGroup.POST("/user/avatar", c.user.UploadAvatar)
		authGroup.GET("/user/enrollments", c.user.MyEnrollments)

		authGroup.POST("/tracks/:id/enroll", c.track.Enroll)
		authGroup.GET("/tracks/:id/progress", c.progress.GetTrackProgress)
		authGroup.POST("/tracks/:id/reviews", c.review.Create)
		authGroup.POST("/tracks/:id/discussions", c.discussion.Create)
		authGroup.DELETE("/reviews/:id", c.review.Delete)
		authGroup.PUT("/discussions/:id", c.discussion.Update)
		authGroup.DELETE("/discussions/:id", c.discussion.Delete)
		authGroup.POST("/discussions/attachments", c.discussion.UploadAttachment)

		authGroup.GET("/modules/:id", c.module.Get)
		authGroup.POST("/modules/:id/progress", c.progress.Record)
		authGroup.GET("/modules/:id/quiz", c.quiz.GetByModule)
		authGroup.POST("/modules/:id/questions", c.qa.Ask)
		authGroup.GET("/modules/:id/questions", c.qa.History)

		authGroup.POST("/quizzes/:id/submit", c.quiz.Submit)
		authGroup.GET("/quizzes/:id/attempts", c.quiz.ListAttempts)

		authGroup.GET("/achievements/mine", c.gamification.MyAchievements)

		authGroup.GET("/notifications", c.notification.List)
		authGroup.GET("/notifications/unread-count", c.notification.UnreadCount)
		authGroup.PATCH("/notifications/read/:id", c.notification.MarkRead)
		authGroup.PATCH("/notifications/read-all", c.notification.MarkAllRead)
		authGroup.GET("/notifications/ws", c.notification.Connect)
	}
}

// 创作者路由：creator或admin角色
func (a *App) registerCreatorRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	creator := router.Group("/api")
	creator.Use(
		middleware.AuthMiddleware(cfg),
		middleware.ActivityMiddleware(s.gamification),
		middleware.RoleMiddleware(model.RoleCreator),
	)
	{
		creator.POST("/tracks", c.track.Create)
		creator.GET("/creator/tracks", c.track.ListMine)
		creator.PUT("/tracks/:id", c.track.Update)
		creator.PATCH("/tracks/:id/publish", c.track.SetPublished)
		creator.DELETE("/tracks/:id", c.track.Delete)
		creator.POST("/tracks/:id/cover", c.track.UploadCover)
		creator.POST("/tracks/:id/modules", c.module.Create)

		creator.PUT("/modules/:id", c.module.Update)
		creator.DELETE("/modules/:id", c.module.Delete)
		creator.POST("/modules/:id/video", c.module.UploadVideo)
		creator.PUT("/modules/:id/quiz", c.module.SaveQuiz)
		creator.DELETE("/modules/:id/quiz", c.module.DeleteQuiz)
	}
}

// 管理员路由
func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/users", c.admin.ListUsers)
		admin.PATCH("/users/:id/status", c.admin.SetUserStatus)
		admin.POST("/invitations", c.admin.MintInvitation)
		admin.GET("/invitations", c.admin.ListInvitations)
		admin.GET("/stats", c.admin.Stats)
		admin.POST("/announcements", c.admin.Announce)
	}
}
