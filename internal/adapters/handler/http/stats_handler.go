package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("", h.Dashboard)
		stats.GET("/habit/:id", h.HabitStats)
		stats.GET("/analytics", h.Analytics)
		stats.GET("/weekly-review", h.WeeklyReview)
	}
}

// Dashboard godoc
//
//	@Summary	Totals, best streaks, last 7 days and the 90 day heatmap
//	@Tags		stats
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/stats [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

// HabitStats godoc
//
//	@Summary	Streaks and completion rate of one habit
//	@Tags		stats
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	envelope
//	@Failure	404	{object}	envelope
//	@Security	BearerAuth
//	@Router		/stats/habit/{id} [get]
func (h *StatsHandler) HabitStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.svc.HabitStats(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

// Analytics godoc
//
//	@Summary	Category breakdown, 30 day progression and best weekday
//	@Tags		stats
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/stats/analytics [get]
func (h *StatsHandler) Analytics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	analytics, err := h.svc.Analytics(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", analytics)
}

// WeeklyReview godoc
//
//	@Summary	Summary of the previous Monday to Sunday week
//	@Tags		stats
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/stats/weekly-review [get]
func (h *StatsHandler) WeeklyReview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	review, err := h.svc.WeeklyReview(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "", review)
}
