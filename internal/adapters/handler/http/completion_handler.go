package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/services"
)

type CompletionHandler struct {
	svc *services.CompletionService
}

func NewCompletionHandler(svc *services.CompletionService) *CompletionHandler {
	return &CompletionHandler{svc: svc}
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type completePayload struct {
	Completion    *domain.Completion `json:"completion"`
	CurrentStreak int                `json:"currentStreak"`
	LongestStreak int                `json:"longestStreak"`
}

type completionPayload struct {
	Completion *domain.Completion `json:"completion"`
}

func (h *CompletionHandler) RegisterRoutes(router *gin.RouterGroup) {
	completions := router.Group("/completions")
	{
		completions.POST("/:habitId", h.Complete)
		completions.GET("/:habitId", h.List)
		completions.DELETE("/:habitId/:date", h.Undo)
		completions.PATCH("/:habitId/:date", h.UpdateNotes)
	}
}

// bindNotes accepts an empty body as "no notes".
func bindNotes(c *gin.Context) (string, bool) {
	var req notesRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return req.Notes, true
}

// Complete godoc
//
//	@Summary	Mark a habit complete for today
//	@Tags		completions
//	@Accept		json
//	@Produce	json
//	@Param		habitId	path		string			true	"Habit ID"
//	@Param		body	body		notesRequest	false	"Optional notes"
//	@Success	201		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Failure	409		{object}	envelope
//	@Security	BearerAuth
//	@Router		/completions/{habitId} [post]
func (h *CompletionHandler) Complete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	notes, ok := bindNotes(c)
	if !ok {
		return
	}

	result, err := h.svc.CompleteToday(c.Request.Context(), services.CompleteInput{
		HabitID: c.Param("habitId"),
		UserID:  userID,
		Notes:   notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, result.Message, completePayload{
		Completion:    result.Completion,
		CurrentStreak: result.Current,
		LongestStreak: result.Longest,
	})
}

// List godoc
//
//	@Summary	Paginated completion history, newest first
//	@Tags		completions
//	@Produce	json
//	@Param		habitId	path		string	true	"Habit ID"
//	@Param		page	query		int		false	"Page, starting at 1"
//	@Param		limit	query		int		false	"Page size, at most 100"
//	@Success	200		{object}	envelope
//	@Security	BearerAuth
//	@Router		/completions/{habitId} [get]
func (h *CompletionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultPageLimit)))

	result, err := h.svc.List(c.Request.Context(), c.Param("habitId"), userID, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	if result.Completions == nil {
		result.Completions = []*domain.Completion{}
	}
	respond(c, http.StatusOK, "", result)
}

// Undo godoc
//
//	@Summary	Remove the completion of a given day
//	@Tags		completions
//	@Produce	json
//	@Param		habitId	path		string	true	"Habit ID"
//	@Param		date	path		string	true	"YYYY-MM-DD"
//	@Success	200		{object}	envelope
//	@Failure	404		{object}	envelope
//	@Security	BearerAuth
//	@Router		/completions/{habitId}/{date} [delete]
func (h *CompletionHandler) Undo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	if err := h.svc.Undo(c.Request.Context(), c.Param("habitId"), userID, date); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Completion removed.", nil)
}

// UpdateNotes godoc
//
//	@Summary	Replace the notes of a completion
//	@Tags		completions
//	@Accept		json
//	@Produce	json
//	@Param		habitId	path		string			true	"Habit ID"
//	@Param		date	path		string			true	"YYYY-MM-DD"
//	@Param		body	body		notesRequest	true	"Notes, empty clears them"
//	@Success	200		{object}	envelope
//	@Security	BearerAuth
//	@Router		/completions/{habitId}/{date} [patch]
func (h *CompletionHandler) UpdateNotes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	notes, ok := bindNotes(c)
	if !ok {
		return
	}

	completion, err := h.svc.UpdateNotes(c.Request.Context(), c.Param("habitId"), userID, date, notes)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Note updated successfully!", completionPayload{Completion: completion})
}
