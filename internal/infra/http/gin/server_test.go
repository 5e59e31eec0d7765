package ginserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/resolve"
	"staybook/internal/app/services/auth"
	appgeo "staybook/internal/app/services/geo"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

const (
	hostToken  = "aG9zdC1zZXNzaW9uLXRva2Vu"
	guestToken = "Z3Vlc3Qtc2Vzc2lvbi10b2tlbg"
)

var serverTestNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type staticGeocoder struct{}

func (staticGeocoder) Geocode(ctx context.Context, text string) (appgeo.Geocoded, error) {
	return appgeo.Geocoded{Country: "Canada", Admin: "Ontario", City: "Toronto"}, nil
}

func newTestHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	sessions := memory.NewSessionStore()

	for _, seed := range []struct {
		id     domainuser.ID
		wallet string
		token  domainauth.Token
	}{
		{"host", "acct_1", hostToken},
		{"guest", "", guestToken},
	} {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID: seed.id, Name: "User " + string(seed.id), WalletID: seed.wallet, CreatedAt: serverTestNow,
		})
		require.NoError(t, err)
		unit, err := memory.Factory{Store: store}.Begin(ctx, uow.TxOptions{})
		require.NoError(t, err)
		require.NoError(t, unit.Users().Save(ctx, u))
		require.NoError(t, unit.Commit(ctx))
		require.NoError(t, sessions.Put(ctx, &domainauth.Session{
			Token: seed.token, UserID: seed.id, CreatedAt: serverTestNow,
		}))
	}

	pipeline := &resolve.Pipeline{
		UoW:      memory.Factory{Store: store},
		Geocoder: staticGeocoder{},
		Now:      func() time.Time { return serverTestNow },
	}
	authSvc := &auth.Service{Users: store.Users(), Sessions: sessions}

	cfg := config.Config{Env: "test", HTTPAddr: ":0"}
	server := NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Listing:        ListingHandler{Pipeline: pipeline},
		HostListing:    HostListingHandler{Pipeline: pipeline},
		Booking:        BookingHandler{Pipeline: pipeline},
		AuthMiddleware: AuthMiddleware{Service: authSvc}.Handle,
	})
	return server.Handler, store
}

func seedServerListing(t *testing.T, store *memory.Store, id, host string) {
	t.Helper()
	ctx := context.Background()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(id),
		Host:        domainlistings.HostID(host),
		Title:       "Harbourfront loft",
		Description: "Tall windows, short walk to the ferry",
		Type:        domainlistings.TypeApartment,
		Address:     "12 King St W",
		Country:     "Canada",
		Admin:       "Ontario",
		City:        "Toronto",
		Price:       5000,
		NumOfGuests: 2,
		Now:         serverTestNow,
	})
	require.NoError(t, err)
	listing.ClearEvents()
	unit, err := memory.Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, listing))
	require.NoError(t, unit.Commit(ctx))
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetListingDetail(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")

	t.Run("owner sees bookings and income", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1", hostToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Authorized  bool            `json:"authorized"`
			Bookings    json.RawMessage `json:"bookings"`
			HostProfile struct {
				Income *int64 `json:"income"`
			} `json:"hostProfile"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Authorized)
		assert.NotEqual(t, "null", string(body.Bookings))
		assert.NotNil(t, body.HostProfile.Income)
	})

	t.Run("anonymous viewer gets null bookings", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Authorized  bool            `json:"authorized"`
			Bookings    json.RawMessage `json:"bookings"`
			HostProfile struct {
				Income *int64 `json:"income"`
			} `json:"hostProfile"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body.Authorized)
		assert.Equal(t, "null", string(body.Bookings))
		assert.Nil(t, body.HostProfile.Income)
	})

	t.Run("unknown listing is 404", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/nope", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMalformedCredentialRejected(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1", "short", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalog(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")
	seedServerListing(t, store, "l2", "host")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings?location=toronto&limit=1&page=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Region string `json:"region"`
		Total  int    `json:"total"`
		Result []struct {
			ID string `json:"id"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Toronto, Ontario, Canada", body.Region)
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Result, 1)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/listings?host=guest", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Total)
}

func TestHostListingCreate(t *testing.T) {
	handler, _ := newTestHandler(t)
	payload := `{"title":"Garden suite","description":"Quiet","image":"","type":"apartment","address":"40 Elm St","price":4500,"numOfGuests":2}`

	t.Run("authenticated host succeeds", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/host/listings", hostToken, payload)
		require.Equal(t, http.StatusCreated, rec.Code)
		var body struct {
			ID      string `json:"id"`
			Country string `json:"country"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.ID)
		assert.Equal(t, "Canada", body.Country)
	})

	t.Run("anonymous viewer is rejected", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/host/listings", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid type is a 400", func(t *testing.T) {
		bad := strings.Replace(payload, `"apartment"`, `"castle"`, 1)
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/host/listings", hostToken, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateBookingRoute(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")

	payload := `{"listingId":"l1","checkIn":"2026-03-15","checkOut":"2026-03-17"}`

	t.Run("guest books open dates", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", guestToken, payload)
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", guestToken, payload)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("host booking own listing is forbidden", func(t *testing.T) {
		other := `{"listingId":"l1","checkIn":"2026-04-01","checkOut":"2026-04-03"}`
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", hostToken, other)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", "", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad date format is a 400", func(t *testing.T) {
		bad := `{"listingId":"l1","checkIn":"15/03/2026","checkOut":"17/03/2026"}`
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", guestToken, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCalendarRoute(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/bookings", guestToken,
		`{"listingId":"l1","checkIn":"2026-03-15","checkOut":"2026-03-17"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	calRec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1/calendar", "", "")
	require.Equal(t, http.StatusOK, calRec.Code)
	var body struct {
		BookingsIndex map[string]map[string]map[string]bool `json:"bookingsIndex"`
	}
	require.NoError(t, json.Unmarshal(calRec.Body.Bytes(), &body))
	// March is month index 2 in the zero-based wire form.
	assert.True(t, body.BookingsIndex["2026"]["2"]["15"])
	assert.True(t, body.BookingsIndex["2026"]["2"]["16"])
	_, checkoutMarked := body.BookingsIndex["2026"]["2"]["17"]
	assert.False(t, checkoutMarked)
}

func TestListingBookingsRoute(t *testing.T) {
	handler, store := newTestHandler(t)
	seedServerListing(t, store, "l1", "host")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1/bookings", guestToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Bookings json.RawMessage `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "null", string(body.Bookings))

	ownerRec := doJSON(t, handler, http.MethodGet, "/api/v1/listings/l1/bookings", hostToken, "")
	require.Equal(t, http.StatusOK, ownerRec.Code)
	require.NoError(t, json.Unmarshal(ownerRec.Body.Bytes(), &body))
	assert.NotEqual(t, "null", string(body.Bookings))
}

func TestHealthRoutes(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/livez", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
