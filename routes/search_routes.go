package routes

import (
	"driveclone/controllers"
	"driveclone/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterSearchRoutes(rg *gin.RouterGroup, jwtSecret string, searchController *controllers.SearchController) {
	search := rg.Group("/search")
	search.Use(middleware.AuthMiddleware(jwtSecret))
	{
		search.GET("", searchController.Search) // GET /search?q=term
	}
}

func RegisterUploadRoutes(rg *gin.RouterGroup, jwtSecret string, uploadController *controllers.UploadController) {
	rg.POST("/upload", middleware.AuthMiddleware(jwtSecret), uploadController.Upload) // POST /upload
}
