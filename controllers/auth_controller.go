package controllers

import (
	"net/http"

	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

// Signup handles POST /auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req services.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	userID, err := ac.authService.Signup(c.Request.Context(), req)
	if err != nil {
		handleError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"userId":  userID.Hex(),
	})
}

// Signin handles POST /auth/signin
func (ac *AuthController) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	session, err := ac.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, ac.logger, err)
		return
	}
	utils.SuccessResponse(c, session)
}
