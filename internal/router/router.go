package router

import (
	"net/http"
	"time"

	"github.com/contactbook/internal/handler"
	"github.com/contactbook/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery(true))

	// 前端与 API 可能不同源
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Language"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ping", api.Ping)
	r.GET("/healthz", api.HealthCheck)

	contacts := r.Group("/api/contacts")
	contacts.Use(api.LocaleMiddleware())
	{
		contacts.GET("", api.GetContacts)
		contacts.POST("", api.CreateContact)
		contacts.GET("/bookmarked", api.GetBookmarkedContacts)
		contacts.GET("/export", api.ExportContacts)
		contacts.POST("/import", api.ImportContacts)
		contacts.GET("/:id", api.GetContact)
		contacts.PATCH("/:id/bookmark", api.ToggleBookmark)
		contacts.POST("/:id/details", api.AddContactDetail)
		contacts.POST("/:id/details/batch", api.AddContactDetailsBatch)
		contacts.DELETE("/:id", api.DeleteContact)
	}

	return r
}
