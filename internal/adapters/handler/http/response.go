package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/adapters/handler/http/middleware"
	"github.com/aethernova/habits-api/internal/core/domain"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// currentUser reads the authenticated user id; it is always present behind AuthMiddleware.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "authentication required")
	}
	return userID, ok
}

func parseDateParam(c *gin.Context, name string) (domain.Date, bool) {
	date, err := domain.ParseDate(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return domain.Date{}, false
	}
	return date, true
}

// handleError maps domain errors onto status codes. Unknown errors are
// attached to the context for the request logger and hidden from the client.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrCompletionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		fail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrCompletionExists):
		fail(c, http.StatusConflict, "You've already completed this habit today. Great job!")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		fail(c, http.StatusConflict, "An account with this email already exists.")
	case errors.Is(err, domain.ErrHabitConflict):
		fail(c, http.StatusConflict, "habit was modified by another device, refresh and retry")

	case errors.Is(err, domain.ErrUnauthorized):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid email or password.")

	case errors.Is(err, domain.ErrHabitTitleEmpty),
		errors.Is(err, domain.ErrHabitTitleTooLong),
		errors.Is(err, domain.ErrHabitDescTooLong),
		errors.Is(err, domain.ErrHabitInvalidUserID),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrHabitArchived),
		errors.Is(err, domain.ErrInvalidFreezeDays),
		errors.Is(err, domain.ErrNoFreezesAvailable),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidCompletion),
		errors.Is(err, domain.ErrNotesTooLong),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidReminder):
		fail(c, http.StatusBadRequest, err.Error())

	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}
