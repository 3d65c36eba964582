package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethernova/habits-api/internal/core/services"
)

type QuoteHandler struct {
	svc *services.QuoteService
}

func NewQuoteHandler(svc *services.QuoteService) *QuoteHandler {
	return &QuoteHandler{svc: svc}
}

type quotePayload struct {
	Quote services.Quote `json:"quote"`
}

// RegisterRoutes mounts today's quote on the public group and the random
// quote on protected.
func (h *QuoteHandler) RegisterRoutes(r, protected *gin.RouterGroup) {
	r.GET("/quotes/today", h.Today)
	protected.GET("/quotes/random", h.Random)
}

// Today godoc
//
//	@Summary	Quote of the day, identical for every caller on a given date
//	@Tags		quotes
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Router		/quotes/today [get]
func (h *QuoteHandler) Today(c *gin.Context) {
	respond(c, http.StatusOK, "", quotePayload{Quote: h.svc.Today(c.Request.Context())})
}

// Random godoc
//
//	@Summary	A random quote
//	@Tags		quotes
//	@Produce	json
//	@Success	200	{object}	envelope
//	@Security	BearerAuth
//	@Router		/quotes/random [get]
func (h *QuoteHandler) Random(c *gin.Context) {
	respond(c, http.StatusOK, "", quotePayload{Quote: h.svc.Random()})
}
