package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/resolve"
	"staybook/internal/app/viewer"
)

type BookingHandler struct {
	Pipeline *resolve.Pipeline
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID string `json:"listingId"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_BODY", err.Error()))
		return
	}
	checkIn, err := time.Parse(wireDateLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_DATE", "checkIn must be formatted YYYY-MM-DD"))
		return
	}
	checkOut, err := time.Parse(wireDateLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("INVALID_DATE", "checkOut must be formatted YYYY-MM-DD"))
		return
	}

	booked, err := h.Pipeline.CreateBooking(c.Request.Context(), viewer.FromContext(c.Request.Context()), resolve.CreateBookingInput{
		ListingID: req.ListingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        string(booked.ID),
		"listingId": string(booked.ListingID),
		"checkIn":   booked.Range.CheckIn.Format(wireDateLayout),
		"checkOut":  booked.Range.CheckOut.Format(wireDateLayout),
	})
}

var _ BookingHTTP = BookingHandler{}
