package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Handler serves the user routes.
type Handler struct {
	svc    UserService
	logger logging.Logger
}

func NewHandler(svc UserService, logger logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var allowedUpdates = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadJSON)
		return
	}

	s, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{User: publicUser(s.User), Token: s.Token})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, publicUser(principal(c).User))
}

// update accepts a JSON object whose keys are a subset of allowedUpdates. Any
// other key rejects the whole request before the service is called.
func (h *Handler) update(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadJSON)
		return
	}
	for key := range raw {
		if _, ok := allowedUpdates[key]; !ok {
			abortWithError(c, http.StatusBadRequest, msgInvalidUpdates)
			return
		}
	}

	in, err := decodeUpdate(raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadJSON)
		return
	}

	user, err := h.svc.Update(c.Request.Context(), principal(c).User, in)
	if err != nil {
		status, msg := statusAndMessage(err)
		if status == http.StatusInternalServerError {
			h.fail(c, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, msg)
		return
	}

	c.JSON(http.StatusOK, publicUser(user))
}

func decodeUpdate(raw map[string]json.RawMessage) (services.UpdateInput, error) {
	var in services.UpdateInput
	fields := map[string]any{
		"name":     &in.Name,
		"email":    &in.Email,
		"password": &in.Password,
		"age":      &in.Age,
	}
	for key, value := range raw {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return in, common.ErrInvalidUpdates
		}
		if err := json.Unmarshal(value, fields[key]); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	if err := h.svc.SetAvatar(c.Request.Context(), principal(c).User.ID, uploadedAvatar(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) deleteAvatar(c *gin.Context) {
	if err := h.svc.DeleteAvatar(c.Request.Context(), principal(c).User.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// avatar is public. An unknown user and a user without avatar both give 404.
func (h *Handler) avatar(c *gin.Context) {
	data, err := h.svc.GetAvatar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) deleteMe(c *gin.Context) {
	user, err := h.svc.Delete(c.Request.Context(), principal(c).User)
	if err != nil {
		h.logger.Error(c.Request.Context(), "delete user failed",
			"user_id", principal(c).User.ID,
			"request_id", RequestIDFrom(c.Request.Context()),
			"error", err,
		)
		abortWithError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, publicUser(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadJSON)
		return
	}

	s, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, _ := statusAndMessage(err)
		if status == http.StatusInternalServerError {
			h.fail(c, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, msgUnableToLogin)
		return
	}

	c.JSON(http.StatusOK, sessionResponse{User: publicUser(s.User), Token: s.Token})
}

func (h *Handler) logout(c *gin.Context) {
	p := principal(c)
	if err := h.svc.Logout(c.Request.Context(), p.User.ID, p.Token); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) logoutAll(c *gin.Context) {
	if err := h.svc.LogoutAll(c.Request.Context(), principal(c).User.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) healthz(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
