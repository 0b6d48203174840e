package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/charterbook/internal/service/availability"
	"github.com/Domenick1991/charterbook/internal/service/fleet"
	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	fleet fleet.FleetUseCase
	slots availability.SlotUseCase
	loc   *time.Location
}

func NewAssetHandler(fleet fleet.FleetUseCase, slots availability.SlotUseCase, loc *time.Location) *AssetHandler {
	return &AssetHandler{fleet: fleet, slots: slots, loc: loc}
}

func (h *AssetHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/slots", h.availableSlots)
}

func (h *AssetHandler) list(c *gin.Context) {
	assets, err := h.fleet.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) get(c *gin.Context) {
	asset, err := h.fleet.GetAsset(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) availableSlots(c *gin.Context) {
	date, ok := parseDate(c, c.Query("date"), h.loc)
	if !ok {
		return
	}
	slots, err := h.slots.GetAvailableSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset_id": c.Param("id"), "date": date.Format(dateLayout), "slots": slots})
}
