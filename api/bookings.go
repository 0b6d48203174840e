package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/Domenick1991/charterbook/internal/service/booking"
	"github.com/Domenick1991/charterbook/internal/service/ledger"
	"github.com/Domenick1991/charterbook/internal/service/workflow"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	drafts   workflow.WorkflowUseCase
	bookings booking.BookingUseCase
	ledger   ledger.LedgerUseCase
	now      func() time.Time
}

type createBookingRequest struct {
	DraftID string `json:"draft_id"`
}

type createBookingResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func NewBookingHandler(drafts workflow.WorkflowUseCase, bookings booking.BookingUseCase, ledger ledger.LedgerUseCase) *BookingHandler {
	return &BookingHandler{drafts: drafts, bookings: bookings, ledger: ledger, now: time.Now}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.GET("/:id/payment-status", h.paymentStatus)
	router.POST("/:id/payments", h.recordPayment)
	router.GET("/:id/refund-quote", h.refundQuote)
	router.POST("/:id/cancel", h.cancel)
}

// create books a draft that already reached the Payment step. The deposit is
// expected later through the payments callback. Repeating the call for the
// same draft returns the same booking.
func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DraftID == "" {
		writeError(c, apperrors.InvalidField("draft_id", "is required"))
		return
	}

	created, err := h.drafts.ReserveBooking(c.Request.Context(), req.DraftID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createBookingResponse{BookingID: created.ID, Status: string(created.Status)})
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) paymentStatus(c *gin.Context) {
	view, err := h.ledger.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// recordPayment is the provider callback. Replays of a transaction id return
// the original record.
func (h *BookingHandler) recordPayment(c *gin.Context) {
	var req ledger.RecordPaymentInput
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.ledger.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *BookingHandler) refundQuote(c *gin.Context) {
	at := h.now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, apperrors.InvalidField("at", "must be an RFC 3339 timestamp"))
			return
		}
		at = parsed
	}

	quote, err := h.ledger.QuoteRefund(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	result, err := h.ledger.Cancel(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
