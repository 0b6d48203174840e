package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/gin-gonic/gin"
)

type Quoter interface {
	ComputePrice(category domain.Category, date time.Time, durationHours, guests int, addonIDs []string) (*pricing.Breakdown, error)
}

type QuoteHandler struct {
	pricer Quoter
	loc    *time.Location
}

type quoteRequest struct {
	Category      domain.Category `json:"category"`
	Date          string          `json:"date"`
	DurationHours int             `json:"duration_hours"`
	Guests        int             `json:"guests"`
	AddonIDs      []string        `json:"addon_ids"`
}

func NewQuoteHandler(pricer Quoter, loc *time.Location) *QuoteHandler {
	return &QuoteHandler{pricer: pricer, loc: loc}
}

func (h *QuoteHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.quote)
}

func (h *QuoteHandler) quote(c *gin.Context) {
	var req quoteRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := parseDate(c, req.Date, h.loc)
	if !ok {
		return
	}

	breakdown, err := h.pricer.ComputePrice(req.Category, date, req.DurationHours, req.Guests, req.AddonIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
