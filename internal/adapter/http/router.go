package http

import (
	"net/http"

	"devscore/internal/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter 组装所有路由，health 之外都需要 JWT
func NewRouter(h *ReportHandler, jwtSvc *JWTService, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), ErrorMiddleware(log))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		private := api.Group("/")
		private.Use(AuthMiddleware(jwtSvc, log))
		{
			private.GET("/profile", h.GetProfile)
			private.PUT("/profile", h.UpdateProfile)

			reports := private.Group("/reports")
			{
				reports.POST("", h.CreateReport)
				reports.GET("", h.ListReports)
				reports.GET("/:id", h.GetReport)
			}

			private.POST("/analyze", h.Analyze)
		}
	}
	return router
}
