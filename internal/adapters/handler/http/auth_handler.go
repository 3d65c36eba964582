package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/adapters/handler/http/middleware"
	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/services"
)

type AuthHandler struct {
	service      *services.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(service *services.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type settingsRequest struct {
	Name            *string `json:"name"`
	ReminderTime    *string `json:"reminderTime"`
	ConfettiEnabled *bool   `json:"confettiEnabled"`
	SoundEnabled    *bool   `json:"soundEnabled"`
}

type userPayload struct {
	User *domain.User `json:"user"`
}

type sessionPayload struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// RegisterRoutes mounts the public auth endpoints on r and the ones that
// need a session on protected. mw runs in front of both.
func (h *AuthHandler) RegisterRoutes(r, protected *gin.RouterGroup, mw ...gin.HandlerFunc) {
	auth := r.Group("/auth", mw...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	me := protected.Group("/auth", mw...)
	{
		me.GET("/me", h.Me)
		me.PATCH("/settings", h.UpdateSettings)
		me.DELETE("/account", h.DeleteAccount)
	}
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, "", -1, "/", "", h.secureCookie, true)
}

// Register godoc
//
//	@Summary	Create an account and start a session
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		registerRequest	true	"New account"
//	@Success	201		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Failure	409		{object}	envelope
//	@Router		/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.setTokenCookie(c, session.Token)
	respond(c, http.StatusCreated, "Account created successfully!", sessionPayload{User: session.User, Token: session.Token})
}

// Login godoc
//
//	@Summary	Start a session
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"Credentials"
//	@Success	200		{object}	envelope
//	@Failure	401		{object}	envelope
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.setTokenCookie(c, session.Token)
	respond(c, http.StatusOK, "Welcome back!", sessionPayload{User: session.User, Token: session.Token})
}

// Logout godoc
//
//	@Summary	Clear the session cookie
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Router		/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearTokenCookie(c)
	respond(c, http.StatusOK, "Logged out successfully.", nil)
}

// Me godoc
//
//	@Summary	Current user profile
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Failure	401	{object}	envelope
//	@Security	BearerAuth
//	@Router		/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", userPayload{User: user})
}

// UpdateSettings godoc
//
//	@Summary	Update profile and reminder settings
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		settingsRequest	true	"Fields to change"
//	@Success	200		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Security	BearerAuth
//	@Router		/auth/settings [patch]
func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateSettings(c.Request.Context(), userID, domain.UserSettings{
		Name:            req.Name,
		ReminderTime:    req.ReminderTime,
		ConfettiEnabled: req.ConfettiEnabled,
		SoundEnabled:    req.SoundEnabled,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Settings updated successfully!", userPayload{User: user})
}

// DeleteAccount godoc
//
//	@Summary	Delete the account with all habits and completions
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/auth/account [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}

	h.clearTokenCookie(c)
	respond(c, http.StatusOK, "Account deleted successfully. We hope to see you again!", nil)
}
