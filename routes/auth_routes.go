package routes

import (
	"driveclone/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes mounts the public account endpoints.
func RegisterAuthRoutes(rg *gin.RouterGroup, authController *controllers.AuthController) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", authController.Signup) // POST /auth/signup
		auth.POST("/signin", authController.Signin) // POST /auth/signin
	}
}
