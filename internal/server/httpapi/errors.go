package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/server/validation"
	"github.com/gin-gonic/gin"
)

const (
	msgAuthenticate   = "Please authenticate."
	msgInvalidUpdates = "Invalid updates!"
	msgUnableToLogin  = "Unable to login"
	msgEmailTaken     = "Email is already registered"
	msgFileTooLarge   = "File too large"
	msgNotAnImage     = "Please upload an image"
	msgNoAvatar       = "No avatar for this user"
	msgNotFound       = "Not found"
	msgTooManyLogins  = "Too many login attempts, try again later"
	msgBadJSON        = "Invalid request body"
	msgInternal       = "Internal server error"
)

// statusAndMessage maps service errors onto the HTTP status and the message
// the client sees. Unknown errors are 500 and their detail stays in the log.
func statusAndMessage(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest, msgEmailTaken
	case errors.Is(err, common.ErrInvalidUpdates):
		return http.StatusBadRequest, msgInvalidUpdates
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusBadRequest, msgUnableToLogin
	case errors.Is(err, common.ErrFileTooLarge):
		return http.StatusBadRequest, msgFileTooLarge
	case errors.Is(err, common.ErrNotAnImage):
		return http.StatusBadRequest, msgNotAnImage
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, msgAuthenticate
	case errors.Is(err, common.ErrNoAvatar):
		return http.StatusNotFound, msgNoAvatar
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgNotFound
	}
	return http.StatusInternalServerError, msgInternal
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// fail answers with the mapped status; 5xx are logged with their cause.
func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := statusAndMessage(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"request_id", RequestIDFrom(c.Request.Context()),
			"error", err,
		)
	}
	abortWithError(c, status, msg)
}
