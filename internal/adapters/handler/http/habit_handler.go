package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/core/domain"
	"github.com/aethernova/habits-api/internal/core/services"
)

type HabitHandler struct {
	svc   *services.HabitService
	clock domain.Clock
}

func NewHabitHandler(svc *services.HabitService, clock domain.Clock) *HabitHandler {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &HabitHandler{
		svc:   svc,
		clock: clock,
	}
}

type createHabitRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type updateHabitRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Version     int     `json:"version"`
}

type freezeRequest struct {
	Days int `json:"days" binding:"required"`
}

type reorderRequest struct {
	Habits []services.ReorderItem `json:"habits" binding:"required"`
}

type habitPayload struct {
	Habit any `json:"habit"`
}

type habitsPayload struct {
	Habits []*domain.Habit `json:"habits"`
}

type syncPayload struct {
	Changes   []*domain.Habit `json:"changes"`
	Timestamp time.Time       `json:"timestamp"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.GET("/sync", h.Sync)
		habits.PATCH("/reorder/batch", h.Reorder)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/freeze", h.Freeze)
		habits.DELETE("/:id/freeze", h.Unfreeze)
		habits.PATCH("/:id/archive", h.ToggleArchive)
	}
}

// List godoc
//
//	@Summary	List active or archived habits in display order
//	@Tags		habits
//	@Produce	json
//	@Param		archived	query		bool	false	"Return archived habits"
//	@Success	200			{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	archived := false
	if raw := c.Query("archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "archived must be true or false")
			return
		}
		archived = v
	}

	list, err := h.svc.List(c.Request.Context(), userID, archived)
	if err != nil {
		handleError(c, err)
		return
	}
	if list == nil {
		list = []*domain.Habit{}
	}
	respond(c, http.StatusOK, "", habitsPayload{Habits: list})
}

// Create godoc
//
//	@Summary	Create a habit
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		body	body		createHabitRequest	true	"Habit"
//	@Success	201		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Habit created!", habitPayload{Habit: habit})
}

// Get godoc
//
//	@Summary	Habit with streaks and full completion history
//	@Tags		habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", habitPayload{Habit: detail})
}

// Update godoc
//
//	@Summary	Update title, description or category
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Habit ID"
//	@Param		body	body		updateHabitRequest	true	"Fields to change"
//	@Success	200		{object}	envelope
//	@Failure	409		{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Version:     req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Habit updated!", habitPayload{Habit: habit})
}

// Delete godoc
//
//	@Summary	Delete a habit
//	@Tags		habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Habit deleted.", nil)
}

// Freeze godoc
//
//	@Summary	Spend a freeze to protect the streak for 1 to 3 days
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Habit ID"
//	@Param		body	body		freezeRequest	true	"Freeze length"
//	@Success	200		{object}	envelope
//	@Failure	400		{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id}/freeze [post]
func (h *HabitHandler) Freeze(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req freezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, domain.ErrInvalidFreezeDays.Error())
		return
	}

	habit, err := h.svc.Freeze(c.Request.Context(), c.Param("id"), userID, req.Days)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, fmt.Sprintf("Habit frozen for %d days.", req.Days), habitPayload{Habit: habit})
}

// Unfreeze godoc
//
//	@Summary	End a freeze early
//	@Tags		habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id}/freeze [delete]
func (h *HabitHandler) Unfreeze(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.Unfreeze(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Habit unfrozen.", habitPayload{Habit: habit})
}

// ToggleArchive godoc
//
//	@Summary	Archive or restore a habit
//	@Tags		habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/{id}/archive [patch]
func (h *HabitHandler) ToggleArchive(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.ToggleArchive(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	message := "Habit restored."
	if habit.Archived {
		message = "Habit archived."
	}
	respond(c, http.StatusOK, message, habitPayload{Habit: habit})
}

// Reorder godoc
//
//	@Summary	Set display positions for several habits at once
//	@Tags		habits
//	@Accept		json
//	@Produce	json
//	@Param		body	body		reorderRequest	true	"New positions"
//	@Success	200		{object}	envelope
//	@Failure	403		{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/reorder/batch [patch]
func (h *HabitHandler) Reorder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), userID, req.Habits); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Habits reordered.", nil)
}

// Sync godoc
//
//	@Summary	Habits changed since last_sync, soft deletes included
//	@Tags		habits
//	@Produce	json
//	@Param		last_sync	query		string	false	"RFC3339 timestamp"
//	@Success	200			{object}	envelope
//	@Security	BearerAuth
//	@Router		/habits/sync [get]
func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid last_sync format, use RFC3339")
			return
		}
		lastSync = t
	}

	// Taken before the query so a write racing the sync shows up next time.
	now := h.clock.Now().UTC()

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}
	if changes == nil {
		changes = []*domain.Habit{}
	}
	respond(c, http.StatusOK, "", syncPayload{Changes: changes, Timestamp: now})
}
