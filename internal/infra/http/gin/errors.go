package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/resolve"
	appgeo "staybook/internal/app/services/geo"
	"staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/obs"
)

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

// writeError maps a resolver error onto a status and stable code. Anything
// unrecognized is an internal failure: logged in full, surfaced opaquely.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "error", err, "path", c.FullPath(), "request_id", obs.RequestIDFromContext(c.Request.Context()))
	}
	c.JSON(status, errorBody(code, message))
}

func classify(err error) (int, string, string) {
	var overlap *availability.OverlapError
	switch {
	case errors.Is(err, resolve.ErrListingNotFound):
		return http.StatusNotFound, "LISTING_NOT_FOUND", "listing could not be found"
	case errors.Is(err, resolve.ErrBookingNotFound):
		return http.StatusNotFound, "BOOKING_NOT_FOUND", "booking could not be found"
	case errors.Is(err, resolve.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED", "viewer could not be found"
	case errors.Is(err, resolve.ErrOwnListing):
		return http.StatusForbidden, "OWN_LISTING", "you cannot book your own listing"
	case errors.Is(err, resolve.ErrHostWalletRequired):
		return http.StatusForbidden, "HOST_WALLET_REQUIRED", "the host cannot receive payments at this time"
	case errors.Is(err, resolve.ErrInvalidAddress):
		return http.StatusBadRequest, "INVALID_ADDRESS", "address could not be resolved to a country, admin and city"
	case errors.Is(err, appgeo.ErrNoCountry):
		return http.StatusBadRequest, "NO_COUNTRY", "no country found for the given location"
	case errors.Is(err, daterange.ErrInvalidRange), errors.Is(err, availability.ErrInvertedRange):
		return http.StatusBadRequest, "INVALID_RANGE", "check out date must be after check in date"
	case errors.Is(err, availability.ErrCheckInPast):
		return http.StatusBadRequest, "CHECK_IN_PAST", "check in date cannot be in the past"
	case errors.As(err, &overlap):
		return http.StatusConflict, "DATES_UNAVAILABLE", overlap.Error()
	case errors.Is(err, resolve.ErrBookingContention):
		return http.StatusConflict, "BOOKING_CONTENTION", "listing is being booked concurrently, try again"
	case errors.Is(err, domainlistings.ErrVersionConflict), errors.Is(err, domainuser.ErrVersionConflict):
		return http.StatusConflict, "CONFLICT", "the record was modified concurrently, try again"
	case isValidation(err):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	}
	return http.StatusInternalServerError, "INTERNAL", "something went wrong"
}

func isValidation(err error) bool {
	for _, candidate := range []error{
		domainlistings.ErrTitleRequired,
		domainlistings.ErrTitleTooLong,
		domainlistings.ErrDescriptionTooLong,
		domainlistings.ErrInvalidType,
		domainlistings.ErrNegativePrice,
		domainlistings.ErrGuestsLimit,
		domainlistings.ErrAddressRequired,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
