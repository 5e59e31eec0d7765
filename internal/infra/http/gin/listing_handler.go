package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/resolve"
	"staybook/internal/app/viewer"
)

// ListingHandler wires listing queries to HTTP.
type ListingHandler struct {
	Pipeline *resolve.Pipeline
	Logger   *slog.Logger
}

// Get responds with the full listing detail: host profile plus, for the
// owner, the paginated booking history.
func (h ListingHandler) Get(c *gin.Context) {
	v := viewer.FromContext(c.Request.Context())
	limit := parseIntWithDefault(c.Query("bookingsLimit"), 10)
	page := parseIntWithDefault(c.Query("bookingsPage"), 1)

	detail, err := h.Pipeline.ListingDetail(c.Request.Context(), v, c.Param("id"), limit, page)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	dto := listingDetailDTO{
		listingDTO:  toListingDTO(detail.Listing, detail.Authorized),
		HostProfile: toHostDTO(detail.Host, detail.Authorized),
		Bookings:    toBookingsPageDTO(detail.Bookings),
	}
	c.JSON(http.StatusOK, dto)
}

// Catalog responds with a filtered page of listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	page, err := h.Pipeline.Listings(
		c.Request.Context(),
		c.Query("location"),
		c.Query("filter"),
		c.Query("host"),
		parseIntWithDefault(c.Query("limit"), 10),
		parseIntWithDefault(c.Query("page"), 1),
	)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, toCatalogDTO(page))
}

// Bookings serves the ownership-gated booking history on its own route.
// For viewers who are not the host the body is {"bookings": null}.
func (h ListingHandler) Bookings(c *gin.Context) {
	ctx := c.Request.Context()
	v := viewer.FromContext(ctx)

	view, err := h.Pipeline.Listing(ctx, v, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	bookings, err := h.Pipeline.ListingBookings(
		ctx, v, view.Listing,
		parseIntWithDefault(c.Query("limit"), 10),
		parseIntWithDefault(c.Query("page"), 1),
	)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingsPageDTO(bookings)})
}

// Calendar exposes the booked-day document that drives date pickers. The
// set of taken days is public; who holds them is not.
func (h ListingHandler) Calendar(c *gin.Context) {
	view, err := h.Pipeline.Listing(c.Request.Context(), viewer.FromContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingsIndex": view.Listing.Index.Nested()})
}

var _ ListingHTTP = ListingHandler{}

func parseIntWithDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
