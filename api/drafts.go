package api

import (
	"net/http"

	"github.com/Domenick1991/charterbook/internal/domain"
	"github.com/Domenick1991/charterbook/internal/service/workflow"
	"github.com/gin-gonic/gin"
)

// DraftHandler exposes the booking workflow. Each PUT submits one step. The
// channel of new drafts is fixed by the route the handler is mounted on.
type DraftHandler struct {
	workflow workflow.WorkflowUseCase
	channel  domain.Channel
}

func NewDraftHandler(workflow workflow.WorkflowUseCase) *DraftHandler {
	return &DraftHandler{workflow: workflow, channel: domain.ChannelCustomer}
}

// NewStaffDraftHandler starts drafts on the staff channel. Mount it only
// behind StaffAuth.
func NewStaffDraftHandler(workflow workflow.WorkflowUseCase) *DraftHandler {
	return &DraftHandler{workflow: workflow, channel: domain.ChannelStaff}
}

func (h *DraftHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.start)
	router.GET("/:id", h.get)
	router.PUT("/:id/details", h.details)
	router.PUT("/:id/datetime", h.dateTime)
	router.PUT("/:id/extras", h.extras)
	router.PUT("/:id/payment", h.payment)
	router.POST("/:id/back", h.back)
}

func (h *DraftHandler) start(c *gin.Context) {
	var req workflow.StartInput
	if !bindJSON(c, &req) {
		return
	}
	req.Channel = h.channel
	draft, err := h.workflow.Start(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *DraftHandler) get(c *gin.Context) {
	draft, err := h.workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) details(c *gin.Context) {
	var req workflow.DetailsInput
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.workflow.SubmitDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) dateTime(c *gin.Context) {
	var req workflow.DateTimeInput
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.workflow.SubmitDateTime(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) extras(c *gin.Context) {
	var req workflow.ExtrasInput
	if !bindJSON(c, &req) {
		return
	}
	draft, err := h.workflow.SubmitExtras(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *DraftHandler) payment(c *gin.Context) {
	var req workflow.PaymentInput
	if !bindJSON(c, &req) {
		return
	}
	outcome, err := h.workflow.SubmitPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (h *DraftHandler) back(c *gin.Context) {
	draft, err := h.workflow.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
