package controllers

import (
	"errors"

	"driveclone/middleware"
	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// handleError writes the status carried by domain errors. Anything else is
// logged and reported as a generic 500.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	var httpErr services.HTTPError
	if errors.As(err, &httpErr) {
		utils.ErrorResponse(c, httpErr.StatusCode(), httpErr.Error())
		return
	}

	requestID, _ := c.Get(middleware.ContextRequestID)
	logger.Error("unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Any("request_id", requestID),
		zap.Error(err),
	)
	_ = c.Error(err)
	utils.InternalServerErrorResponse(c)
}

// currentUser reads the caller set by AuthMiddleware. Routes without the
// middleware never reach a handler that calls this.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return userID, true
}

// requiredID parses a mandatory ObjectID, answering 400 when it is missing
// or malformed.
func requiredID(c *gin.Context, raw, what string) (primitive.ObjectID, bool) {
	if raw == "" {
		utils.BadRequestResponse(c, "Missing "+what+" ID")
		return primitive.NilObjectID, false
	}
	id, ok := utils.ParseObjectID(raw)
	if !ok {
		utils.BadRequestResponse(c, "Invalid "+what+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// optionalID parses an id where "", "null" and "root" mean the root level.
func optionalID(c *gin.Context, raw, what string) (*primitive.ObjectID, bool) {
	id, ok := utils.ParseOptionalObjectID(raw)
	if !ok {
		utils.BadRequestResponse(c, "Invalid "+what+" ID")
		return nil, false
	}
	return id, true
}

