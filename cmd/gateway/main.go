package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	addressapp "github.com/dwikikusuma/laundry-pickup/internal/address/app"
	cartapp "github.com/dwikikusuma/laundry-pickup/internal/cart/app"
	"github.com/dwikikusuma/laundry-pickup/internal/cart/infra/orderhttp"
	checkoutapp "github.com/dwikikusuma/laundry-pickup/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/laundry-pickup/internal/checkout/infra/adapter"
	locationapp "github.com/dwikikusuma/laundry-pickup/internal/location/app"
	locationdomain "github.com/dwikikusuma/laundry-pickup/internal/location/domain"
	"github.com/dwikikusuma/laundry-pickup/internal/location/infra/device"
	"github.com/dwikikusuma/laundry-pickup/internal/location/infra/geocode"
	placesapp "github.com/dwikikusuma/laundry-pickup/internal/places/app"
	"github.com/dwikikusuma/laundry-pickup/internal/places/infra/google"

	"github.com/dwikikusuma/laundry-pickup/pkg/config"
	"github.com/dwikikusuma/laundry-pickup/pkg/logger"
	"github.com/dwikikusuma/laundry-pickup/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "gateway",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if cfg.PlacesAPIKey == "" {
		log.Warn("PLACES_API_KEY is empty, place search and geocoding will fail")
	}

	a := newAPI(cfg, log)

	// Open the cart screen once up front so the first GET is warm.
	if _, err := a.checkout.Open(ctx); err != nil {
		log.Warn("initial cart load failed", slog.Any("err", err))
	}

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc health starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		healthServer.Shutdown()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()

		if err := server.Shutdown(stopCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopCtx.Done():
			log.Warn("graceful stop timeout, forcing stop")
			grpcServer.Stop()
		case <-stopped:
		}

		a.search.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("gateway stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func newAPI(cfg config.Config, log *slog.Logger) *api {
	orders := orderhttp.NewClient(orderhttp.Config{
		BaseURL: cfg.OrderServiceURL,
		Token:   cfg.OrderServiceToken,
		Timeout: cfg.OrderServiceTimeout,
	}, nil)

	places := google.NewClient(google.Config{
		BaseURL: cfg.PlacesBaseURL,
		APIKey:  cfg.PlacesAPIKey,
		Country: cfg.PlacesCountry,
		RPS:     cfg.PlacesRPS,
	}, nil)

	locator := device.NewReportedLocator(device.DefaultMaxAge)
	resolver := locationapp.NewResolver(
		locator,
		geocode.NewAdapter(places),
		locationdomain.Coordinate{Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLng},
		log,
	)

	cartSvc := cartapp.NewService(orders, log)
	addressSvc := addressapp.NewService(orders, resolver, log)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cartSvc),
		checkoutadapter.NewAddressServiceReader(addressSvc),
		log,
	)

	search := placesapp.NewSearch(places, places, placesapp.Options{
		Debounce: cfg.SearchDebounce,
		MinQuery: cfg.SearchMinQuery,
	}, log)

	return &api{
		cart:           cartSvc,
		address:        addressSvc,
		checkout:       checkoutSvc,
		search:         search,
		resolver:       resolver,
		device:         locator,
		log:            log,
		requestTimeout: 2 * cfg.OrderServiceTimeout,
	}
}
