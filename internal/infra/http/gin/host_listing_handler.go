package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/resolve"
	"staybook/internal/app/viewer"
)

type HostListingHandler struct {
	Pipeline *resolve.Pipeline
	Logger   *slog.Logger
}

type hostListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Price       int64  `json:"price"`
	NumOfGuests int    `json:"numOfGuests"`
}

func (h HostListingHandler) Create(c *gin.Context) {
	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_BODY", err.Error()))
		return
	}
	listing, err := h.Pipeline.HostListing(c.Request.Context(), viewer.FromContext(c.Request.Context()), resolve.HostListingInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Type:        req.Type,
		Address:     req.Address,
		Price:       req.Price,
		NumOfGuests: req.NumOfGuests,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, toListingDTO(listing, true))
}

var _ HostListingHTTP = HostListingHandler{}
