package app

import (
	"assessment_backend/docs"
	"assessment_backend/internal/middleware"
	"assessment_backend/internal/model"
	"assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(a.jwtConfig))
	{
		registerLearnerRoutes(authGroup, c)
		registerTeacherRoutes(authGroup, c)
	}
}

func registerLearnerRoutes(r *gin.RouterGroup, c *controllers) {
	r.POST("/assessments/:id/attempts", c.attempt.Start)
	r.GET("/attempts/:attemptId", c.attempt.Get)
	r.PUT("/attempts/:attemptId/answers", c.attempt.SaveDraft)
	r.POST("/attempts/:attemptId/submit", c.attempt.Submit)
	r.GET("/me/attempts", c.attempt.ListMine)
}

func registerTeacherRoutes(r *gin.RouterGroup, c *controllers) {
	teacher := r.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/assessments", c.assessment.Create)
		teacher.GET("/assessments", c.assessment.List)
		teacher.GET("/assessments/:id", c.assessment.Get)
		teacher.PUT("/assessments/:id", c.assessment.Update)
		teacher.POST("/assessments/:id/archive", c.assessment.Archive)

		teacher.POST("/assessments/:id/questions", c.assessment.AddQuestion)
		teacher.PUT("/assessments/:id/questions/:questionId", c.assessment.UpdateQuestion)
		teacher.DELETE("/assessments/:id/questions/:questionId", c.assessment.RemoveQuestion)

		teacher.GET("/assessments/:id/statistics", c.grade.Statistics)
		teacher.GET("/assessments/:id/attempts", c.grade.List)
		teacher.GET("/assessments/:id/attempts/export", c.grade.Export)
		teacher.POST("/assessments/:id/attempts/export/archive", c.grade.ArchiveExport)
		teacher.GET("/assessments/:id/attempts/:attemptId", c.grade.Get)
		teacher.POST("/assessments/:id/attempts/:attemptId/grade", c.grade.Grade)
		teacher.POST("/assessments/:id/attempts/:attemptId/regrade", c.grade.Regrade)
		teacher.GET("/assessments/:id/attempts/:attemptId/audit", c.grade.Audit)
	}
}
