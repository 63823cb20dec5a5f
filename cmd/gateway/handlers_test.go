package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addressapp "github.com/dwikikusuma/laundry-pickup/internal/address/app"
	cartapp "github.com/dwikikusuma/laundry-pickup/internal/cart/app"
	cartdomain "github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/laundry-pickup/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/laundry-pickup/internal/checkout/infra/adapter"
	locationapp "github.com/dwikikusuma/laundry-pickup/internal/location/app"
	locationdomain "github.com/dwikikusuma/laundry-pickup/internal/location/domain"
	"github.com/dwikikusuma/laundry-pickup/internal/location/infra/device"
	placesapp "github.com/dwikikusuma/laundry-pickup/internal/places/app"
	placesdomain "github.com/dwikikusuma/laundry-pickup/internal/places/domain"
)

func ptr[T any](v T) *T { return &v }

type fakeBackend struct {
	mu      sync.Mutex
	pending *cartdomain.PendingOrder
	userID  string
	address string
	update  func(items []cartdomain.CartUpdate) (*cartdomain.CartSnapshot, error)

	predictions []placesdomain.Prediction
	details     placesdomain.Details
	marks       []locationdomain.Placemark
}

func (f *fakeBackend) FetchPendingOrder(ctx context.Context) (*cartdomain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending, nil
}

func (f *fakeBackend) UpdateCart(ctx context.Context, userID string, items []cartdomain.CartUpdate) (*cartdomain.CartSnapshot, error) {
	return f.update(items)
}

func (f *fakeBackend) CurrentUserID(ctx context.Context) (string, error) { return f.userID, nil }

func (f *fakeBackend) PickupAddress(ctx context.Context) (string, error) { return f.address, nil }

func (f *fakeBackend) Autocomplete(ctx context.Context, query, token string) ([]placesdomain.Prediction, error) {
	return f.predictions, nil
}

func (f *fakeBackend) Details(ctx context.Context, placeID, token string) (placesdomain.Details, error) {
	d := f.details
	d.PlaceID = placeID
	return d, nil
}

func (f *fakeBackend) ReverseGeocode(ctx context.Context, at locationdomain.Coordinate) ([]locationdomain.Placemark, error) {
	return f.marks, nil
}

func newTestAPI(t *testing.T, f *fakeBackend) (*api, *httptest.Server) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	locator := device.NewReportedLocator(time.Minute)
	resolver := locationapp.NewResolver(locator, f, locationdomain.Coordinate{}, log)
	cartSvc := cartapp.NewService(f, log)
	addressSvc := addressapp.NewService(f, resolver, log)

	a := &api{
		cart:    cartSvc,
		address: addressSvc,
		checkout: checkoutapp.NewService(
			checkoutadapter.NewCartServiceReader(cartSvc),
			checkoutadapter.NewAddressServiceReader(addressSvc),
			log,
		),
		search:   placesapp.NewSearch(f, f, placesapp.Options{Debounce: 5 * time.Millisecond}, log),
		resolver: resolver,
		device:   locator,
		log:      log,
	}
	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)
	return a, srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	_, srv := newTestAPI(t, &fakeBackend{})
	assert.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/healthz", "", nil))
	assert.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/readyz", "", nil))
}

func TestCartFlow(t *testing.T) {
	f := &fakeBackend{
		userID:  "u-1",
		address: "5-9-22 Station Road",
		pending: &cartdomain.PendingOrder{ID: "ord-1", Items: []cartdomain.RemoteItem{
			{ItemName: "Shirt", UnitPrice: ptr(20.0), Quantity: ptr(2)},
			{ItemName: "Towel", UnitPrice: ptr(10.0), Quantity: ptr(1)},
		}},
	}
	server := map[string]int{"Shirt": 2, "Towel": 1}
	prices := map[string]float64{"Shirt": 20, "Towel": 10}
	f.update = func(items []cartdomain.CartUpdate) (*cartdomain.CartSnapshot, error) {
		for _, it := range items {
			server[it.ItemName] = it.Quantity
		}
		out := []cartdomain.RemoteItem{}
		for _, name := range []string{"Shirt", "Towel"} {
			if server[name] > 0 {
				out = append(out, cartdomain.RemoteItem{ItemName: name, Price: ptr(prices[name]), Quantity: ptr(server[name])})
			}
		}
		return &cartdomain.CartSnapshot{Items: out}, nil
	}
	_, srv := newTestAPI(t, f)

	var view cartView
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/cart/reload", "", &view))
	assert.Equal(t, "ord-1", view.OrderID)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 50.0, view.Bill.TotalPay)
	assert.Equal(t, "5-9-22 Station Road", view.PickupAddress)

	var res quantityResult
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/cart/lines/1/quantity", `{"delta":1}`, &res))
	assert.Equal(t, outcomeConfirmed, res.Outcome)
	assert.Equal(t, 3, res.Lines[0].Qty)
	assert.Equal(t, 70.0, res.Bill.TotalPay)

	var bill cartdomain.Bill
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/cart/bill", "", &bill))
	assert.Equal(t, 70.0, bill.ItemTotal)

	var pay struct {
		TotalPay      string `json:"totalPay"`
		PickupAddress string `json:"pickupAddress"`
	}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/cart/checkout", "", &pay))
	assert.Equal(t, "70", pay.TotalPay)
	assert.Equal(t, "5-9-22 Station Road", pay.PickupAddress)
}

func TestChangeQuantityErrors(t *testing.T) {
	f := &fakeBackend{pending: &cartdomain.PendingOrder{Items: []cartdomain.RemoteItem{
		{ItemName: "Shirt", UnitPrice: ptr(20.0), Quantity: ptr(2)},
	}}}
	_, srv := newTestAPI(t, f)
	call(t, srv, http.MethodPost, "/cart/reload", "", nil)

	var errBody errorBody
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodPost, "/cart/lines/1/quantity", `{"delta":1}`, &errBody))
	assert.Equal(t, "UNAUTHENTICATED", errBody.Error.Code)

	var view cartView
	call(t, srv, http.MethodGet, "/cart", "", &view)
	assert.Equal(t, 2, view.Lines[0].Qty, "rolled back")

	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodPost, "/cart/lines/9/quantity", `{"delta":1}`, &errBody))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/cart/lines/1/quantity", `{"delta":0}`, &errBody))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/cart/lines/1/quantity", `not json`, &errBody))
}

func TestChangeQuantityRollbackKeepsCart(t *testing.T) {
	f := &fakeBackend{
		userID: "u-1",
		pending: &cartdomain.PendingOrder{Items: []cartdomain.RemoteItem{
			{ItemName: "Shirt", UnitPrice: ptr(20.0), Quantity: ptr(1)},
		}},
		update: func(items []cartdomain.CartUpdate) (*cartdomain.CartSnapshot, error) {
			return nil, errors.New("connection refused")
		},
	}
	_, srv := newTestAPI(t, f)
	call(t, srv, http.MethodPost, "/cart/reload", "", nil)

	var res quantityResult
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/cart/lines/1/quantity", `{"delta":-1}`, &res))
	assert.Equal(t, outcomeRolledBack, res.Outcome)
	assert.NotEmpty(t, res.Message)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 1, res.Lines[0].Qty)
}

func TestCheckoutRequiresAddress(t *testing.T) {
	_, srv := newTestAPI(t, &fakeBackend{})

	var seeded cartView
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/cart/seed",
		`{"items":[{"item_name":"Bedsheet","price":60,"quantity":1}]}`, &seeded))
	require.Len(t, seeded.Lines, 1)

	var errBody errorBody
	assert.Equal(t, http.StatusUnprocessableEntity, call(t, srv, http.MethodPost, "/cart/checkout", "", &errBody))
	assert.Equal(t, "FAILED_PRECONDITION", errBody.Error.Code)
}

func TestSetPickup(t *testing.T) {
	_, srv := newTestAPI(t, &fakeBackend{})

	var out scheduleView
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, "/cart/pickup", `{"date":"2025-03-14","time":"09:30"}`, &out))
	assert.Equal(t, "2025-03-14", out.Date)
	assert.Equal(t, "09:30", out.Time)
	local := out.At.Local()
	assert.Equal(t, 14, local.Day())
	assert.Equal(t, 9, local.Hour())
	assert.Equal(t, 30, local.Minute())

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, "/cart/pickup", `{"time":"17:15"}`, &out))
	assert.Equal(t, "2025-03-14", out.Date, "date kept")
	assert.Equal(t, "17:15", out.Time)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, "/cart/pickup", `{"date":"14/03/2025"}`, &errorBody{}))
}

func TestAddressFlow(t *testing.T) {
	f := &fakeBackend{address: "Registered Rd"}
	_, srv := newTestAPI(t, f)
	call(t, srv, http.MethodPost, "/cart/reload", "", nil)

	var view addressapp.View
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/addresses", `{"newAddress":"Flat 4, Abids"}`, &view))
	assert.Equal(t, []string{"Registered Rd", "Flat 4, Abids"}, view.Addresses)
	assert.Equal(t, "Flat 4, Abids", view.Selected)

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/addresses/select", `{"address":"Registered Rd"}`, &view))
	assert.Equal(t, "Registered Rd", view.Selected)

	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodPost, "/addresses/select", `{"address":"Nowhere"}`, &errorBody{}))

	var h addressapp.NewAddressHandoff
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/addresses/details", `{
		"apartment":"Flat 4","landmark":"Near clock tower","address":"Abids",
		"subAddress":"Hyderabad","state":"Telangana","district":"Hyderabad","pincode":"500001"}`, &h))
	assert.Contains(t, h.NewAddress, "Flat 4")

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/addresses/details", `{"apartment":"Flat 4"}`, &errorBody{}))
}

func TestUseCurrentLocation(t *testing.T) {
	f := &fakeBackend{marks: []locationdomain.Placemark{{Street: "MG Road", City: "Guntur"}}}
	_, srv := newTestAPI(t, f)

	assert.Equal(t, http.StatusServiceUnavailable, call(t, srv, http.MethodPost, "/addresses/current", "", &errorBody{}))

	require.Equal(t, http.StatusNoContent, call(t, srv, http.MethodPost, "/location/fix",
		`{"tier":"balanced","latitude":16.3,"longitude":80.4,"accuracy":40}`, nil))

	var view addressapp.View
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/addresses/current", "", &view))
	assert.Equal(t, "MG Road, Guntur", view.Selected)

	require.Equal(t, http.StatusNoContent, call(t, srv, http.MethodPost, "/location/fix", `{"denied":true}`, nil))
	assert.Equal(t, http.StatusForbidden, call(t, srv, http.MethodPost, "/addresses/current", "", &errorBody{}))
}

func TestLocationEndpoints(t *testing.T) {
	f := &fakeBackend{marks: []locationdomain.Placemark{{Name: "Charminar", City: "Hyderabad", Region: "Telangana"}}}
	_, srv := newTestAPI(t, f)

	var lv locationView
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/location/current", "", &lv))
	assert.Equal(t, locationapp.DefaultCoordinate.Latitude, lv.Resolved.Latitude, "no fix yet")

	call(t, srv, http.MethodPost, "/location/fix", `{"tier":"best_for_navigation","latitude":17.36,"longitude":78.47,"accuracy":8}`, nil)
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/location/current", "", &lv))
	assert.Equal(t, 17.36, lv.Resolved.Latitude)
	assert.Equal(t, "Charminar", lv.Handoff.Address)

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/location/region", `{"latitude":17.4,"longitude":78.5}`, &lv))
	assert.Equal(t, 17.4, lv.Handoff.Latitude)
	assert.Equal(t, "Telangana", lv.Handoff.State)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/location/region", `{"latitude":99,"longitude":0}`, &errorBody{}))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/location/fix", `{"tier":"gps","latitude":1,"longitude":1}`, &errorBody{}))

	call(t, srv, http.MethodPost, "/location/fix", `{"denied":true}`, nil)
	assert.Equal(t, http.StatusForbidden, call(t, srv, http.MethodPost, "/location/current", "", &errorBody{}))
}

func TestSearchFlow(t *testing.T) {
	f := &fakeBackend{
		predictions: []placesdomain.Prediction{{PlaceID: "p-hyd", Description: "Hyderabad, Telangana, India", MainText: "Hyderabad"}},
		details: placesdomain.Details{
			Latitude: 17.385, Longitude: 78.4867, FormattedAddress: "Hyderabad, Telangana, India",
			Components: []placesdomain.AddressComponent{
				{LongName: "Hyderabad", ShortName: "Hyderabad", Types: []string{"locality"}},
				{LongName: "Telangana", ShortName: "TG", Types: []string{"administrative_area_level_1"}},
			},
		},
	}
	a, srv := newTestAPI(t, f)

	var sess placesapp.Session
	require.Equal(t, http.StatusAccepted, call(t, srv, http.MethodPut, "/search", `{"query":"Hyderabad"}`, &sess))
	assert.True(t, sess.Pending)

	require.Eventually(t, func() bool {
		return a.search.Snapshot().State == placesapp.StateReady
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/search", "", &sess))
	require.Len(t, sess.Predictions, 1)

	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodPost, "/search/select", `{"placeId":"nope"}`, &errorBody{}))

	var lv locationView
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/search/select", `{"placeId":"p-hyd"}`, &lv))
	assert.Equal(t, "Hyderabad, Telangana, India", lv.Handoff.Address)
	assert.Equal(t, "Hyderabad, TG", lv.Handoff.SubAddress)
	assert.Equal(t, "Telangana", lv.Handoff.State)
	assert.Equal(t, "Hyderabad", lv.Handoff.District)

	call(t, srv, http.MethodGet, "/search", "", &sess)
	assert.Empty(t, sess.Query)

	call(t, srv, http.MethodPut, "/search", `{"query":"Hy"}`, &sess)
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/search/submit", "", &errorBody{}))

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodDelete, "/search", "", &sess))
	assert.Equal(t, placesapp.StateIdle, sess.State)
}
