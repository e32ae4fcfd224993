package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/scrape", handler.Scrape)
		api.POST("/analyze", handler.Analyze)
		api.GET("/searches", handler.GetRecentSearches)
		api.GET("/searches/:id/listings", handler.GetSearchListings)
	}
}
