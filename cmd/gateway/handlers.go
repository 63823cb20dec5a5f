package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	addressapp "github.com/dwikikusuma/laundry-pickup/internal/address/app"
	addressdomain "github.com/dwikikusuma/laundry-pickup/internal/address/domain"
	addressgrpc "github.com/dwikikusuma/laundry-pickup/internal/address/grpc"
	cartapp "github.com/dwikikusuma/laundry-pickup/internal/cart/app"
	cartdomain "github.com/dwikikusuma/laundry-pickup/internal/cart/domain"
	cartgrpc "github.com/dwikikusuma/laundry-pickup/internal/cart/grpc"
	checkoutapp "github.com/dwikikusuma/laundry-pickup/internal/checkout/app"
	checkoutgrpc "github.com/dwikikusuma/laundry-pickup/internal/checkout/grpc"
	locationapp "github.com/dwikikusuma/laundry-pickup/internal/location/app"
	locationdomain "github.com/dwikikusuma/laundry-pickup/internal/location/domain"
	locationgrpc "github.com/dwikikusuma/laundry-pickup/internal/location/grpc"
	"github.com/dwikikusuma/laundry-pickup/internal/location/infra/device"
	placesapp "github.com/dwikikusuma/laundry-pickup/internal/places/app"
	placesgrpc "github.com/dwikikusuma/laundry-pickup/internal/places/grpc"
)

const maxBodyBytes = 1 << 20

// api is the backend-for-frontend of one app session.
type api struct {
	cart     *cartapp.Service
	address  *addressapp.Service
	checkout *checkoutapp.Service
	search   *placesapp.Search
	resolver *locationapp.Resolver
	device   *device.ReportedLocator
	log      *slog.Logger

	requestTimeout time.Duration
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	if a.requestTimeout > 0 {
		r.Use(middleware.Timeout(a.requestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", a.getCart)
		r.Post("/reload", a.reloadCart)
		r.Post("/seed", a.seedCart)
		r.Post("/lines/{lineID}/quantity", a.changeQuantity)
		r.Get("/bill", a.getBill)
		r.Put("/pickup", a.setPickup)
		r.Post("/checkout", a.checkoutCart)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Get("/", a.getAddresses)
		r.Post("/", a.saveAddress)
		r.Post("/select", a.selectAddress)
		r.Post("/current", a.useCurrentLocation)
		r.Post("/details", a.submitDetails)
	})

	r.Route("/search", func(r chi.Router) {
		r.Get("/", a.getSearch)
		r.Put("/", a.typeQuery)
		r.Delete("/", a.closeSearch)
		r.Post("/submit", a.submitSearch)
		r.Post("/select", a.selectPlace)
	})

	r.Route("/location", func(r chi.Router) {
		r.Post("/fix", a.reportFix)
		r.Post("/current", a.locateDevice)
		r.Post("/region", a.regionChanged)
	})

	return r
}

func (a *api) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Info("http request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
		)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return nil
}

// cart

const clockLayout = "15:04"

type scheduleView struct {
	Date string    `json:"date"`
	Time string    `json:"time"`
	At   time.Time `json:"at"`
}

func newScheduleView(s cartdomain.PickupSchedule) scheduleView {
	return scheduleView{
		Date: s.Date.Format(time.DateOnly),
		Time: s.Time.Format(clockLayout),
		At:   s.At(),
	}
}

type cartView struct {
	OrderID       string            `json:"orderId,omitempty"`
	Lines         []cartdomain.Line `json:"lines"`
	Bill          cartdomain.Bill   `json:"bill"`
	Schedule      scheduleView      `json:"schedule"`
	PickupAddress string            `json:"pickupAddress"`
}

const (
	outcomeConfirmed  = "confirmed"
	outcomeRolledBack = "rolled_back"
)

type quantityResult struct {
	cartView
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

func (a *api) cartView() cartView {
	return cartView{
		OrderID:       a.cart.OrderID(),
		Lines:         a.cart.Lines(),
		Bill:          a.cart.Bill(),
		Schedule:      newScheduleView(a.cart.Schedule()),
		PickupAddress: a.address.Selected(),
	}
}

func (a *api) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.cartView())
}

func (a *api) reloadCart(w http.ResponseWriter, r *http.Request) {
	if _, err := a.checkout.Open(r.Context()); err != nil {
		writeError(w, a.log, checkoutgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, a.cartView())
}

func (a *api) seedCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []cartdomain.RemoteItem `json:"items"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	a.cart.Seed(req.Items)
	writeJSON(w, http.StatusOK, a.cartView())
}

func (a *api) changeQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if req.Delta == 0 {
		writeError(w, a.log, status.Error(codes.InvalidArgument, "delta must not be zero"))
		return
	}

	err := a.cart.ChangeQuantity(r.Context(), chi.URLParam(r, "lineID"), req.Delta)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, quantityResult{cartView: a.cartView(), Outcome: outcomeConfirmed})
	case errors.Is(err, cartapp.ErrRolledBack):
		// The order service could not confirm; the cart is back to what it was.
		writeJSON(w, http.StatusOK, quantityResult{cartView: a.cartView(), Outcome: outcomeRolledBack, Message: err.Error()})
	default:
		writeError(w, a.log, cartgrpc.Status(err))
	}
}

func (a *api) getBill(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.cart.Bill())
}

func (a *api) setPickup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}

	if req.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.Date, time.Local)
		if err != nil {
			writeError(w, a.log, status.Errorf(codes.InvalidArgument, "date must look like %s", time.DateOnly))
			return
		}
		a.cart.SetPickupDate(d)
	}
	if req.Time != "" {
		t, err := time.ParseInLocation(clockLayout, req.Time, time.Local)
		if err != nil {
			writeError(w, a.log, status.Error(codes.InvalidArgument, "time must look like 15:04"))
			return
		}
		a.cart.SetPickupTime(t)
	}

	writeJSON(w, http.StatusOK, newScheduleView(a.cart.Schedule()))
}

func (a *api) checkoutCart(w http.ResponseWriter, r *http.Request) {
	p, err := a.checkout.Pay(r.Context())
	if err != nil {
		writeError(w, a.log, checkoutgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// addresses

func (a *api) getAddresses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.address.View())
}

func (a *api) saveAddress(w http.ResponseWriter, r *http.Request) {
	var req addressapp.NewAddressHandoff
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, a.address.SaveNew(req.NewAddress))
}

func (a *api) selectAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}

	view, err := a.address.Select(req.Address)
	if err != nil {
		writeError(w, a.log, addressgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) useCurrentLocation(w http.ResponseWriter, r *http.Request) {
	view, err := a.address.UseCurrentLocation(r.Context())
	if err != nil {
		writeError(w, a.log, addressgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) submitDetails(w http.ResponseWriter, r *http.Request) {
	var req addressdomain.Details
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}

	h, err := a.address.Submit(req)
	if err != nil {
		writeError(w, a.log, addressgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// search

type locationView struct {
	Resolved locationdomain.Resolved `json:"resolved"`
	Handoff  locationdomain.Handoff  `json:"handoff"`
}

func newLocationView(r locationdomain.Resolved) locationView {
	return locationView{Resolved: r, Handoff: r.Handoff()}
}

func (a *api) getSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.search.Snapshot())
}

func (a *api) typeQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusAccepted, a.search.Type(req.Query))
}

func (a *api) closeSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.search.Close())
}

func (a *api) submitSearch(w http.ResponseWriter, r *http.Request) {
	d, err := a.search.Submit(r.Context())
	if err != nil {
		writeError(w, a.log, placesgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, newLocationView(a.resolver.FromPlace(d)))
}

func (a *api) selectPlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaceID string `json:"placeId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}

	p, ok := a.search.Prediction(strings.TrimSpace(req.PlaceID))
	if !ok {
		writeError(w, a.log, status.Errorf(codes.NotFound, "no prediction %q in the current results", req.PlaceID))
		return
	}

	d, err := a.search.Select(r.Context(), p)
	if err != nil {
		writeError(w, a.log, placesgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, newLocationView(a.resolver.FromPlace(d)))
}

// location

func (a *api) reportFix(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier      locationdomain.Accuracy `json:"tier"`
		Latitude  float64                 `json:"latitude"`
		Longitude float64                 `json:"longitude"`
		Accuracy  *float64                `json:"accuracy"`
		Denied    bool                    `json:"denied"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}

	if req.Denied {
		a.device.Deny()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if req.Tier == "" {
		req.Tier = locationdomain.AccuracyBalanced
	}
	if !req.Tier.Valid() {
		writeError(w, a.log, status.Errorf(codes.InvalidArgument, "unknown accuracy tier %q", req.Tier))
		return
	}
	if err := validCoordinate(req.Latitude, req.Longitude); err != nil {
		writeError(w, a.log, err)
		return
	}

	a.device.Report(req.Tier, locationdomain.Position{
		Coordinate: locationdomain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		Accuracy:   req.Accuracy,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) locateDevice(w http.ResponseWriter, r *http.Request) {
	res, err := a.resolver.FromDevice(r.Context())
	if err != nil {
		writeError(w, a.log, locationgrpc.Status(err))
		return
	}
	writeJSON(w, http.StatusOK, newLocationView(res))
}

func (a *api) regionChanged(w http.ResponseWriter, r *http.Request) {
	var req locationdomain.Coordinate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := validCoordinate(req.Latitude, req.Longitude); err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, newLocationView(a.resolver.OnRegionChange(r.Context(), req)))
}

func validCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return status.Error(codes.InvalidArgument, fmt.Sprintf("coordinate out of range: %v,%v", lat, lng))
	}
	return nil
}
