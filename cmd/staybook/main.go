package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/resolve"
	authservice "staybook/internal/app/services/auth"
	appgeo "staybook/internal/app/services/geo"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	geoclient "staybook/internal/infra/geo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	store, sessions, users, ready, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	pipeline := &resolve.Pipeline{
		UoW:      store,
		Geocoder: buildGeocoder(cfg, logger),
		Logger:   logger,
	}
	if publisher := buildPublisher(cfg, logger); publisher != nil {
		pipeline.Events = publisher
		defer publisher.Close()
	}
	if uploader := buildUploader(cfg, logger); uploader != nil {
		pipeline.Images = uploader
	}

	authSvc := &authservice.Service{Users: users, Sessions: sessions, Logger: logger}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, ginserver.Handlers{
		Listing:        ginserver.ListingHandler{Pipeline: pipeline, Logger: logger},
		HostListing:    ginserver.HostListingHandler{Pipeline: pipeline, Logger: logger},
		Booking:        ginserver.BookingHandler{Pipeline: pipeline, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authSvc, Logger: logger}.Handle,
	})

	if cfg.Storage == "memory" {
		if err := seedDemoAccounts(ctx, store, sessions, cfg.SessionTTL, logger); err != nil {
			logger.Warn("demo seed failed", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func buildStorage(cfg config.Config, logger *slog.Logger) (uow.Factory, domainauth.SessionStore, domainuser.Repository, func() error, error) {
	switch cfg.Storage {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		ready := func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		return mongodb.Factory{DB: client.DB},
			mongodb.NewSessionStore(client.DB),
			mongodb.NewUserRepository(client.DB),
			ready, nil
	default:
		store := memory.NewStore()
		return memory.Factory{Store: store},
			memory.NewSessionStore(),
			store.Users(),
			func() error { return nil }, nil
	}
}

func buildGeocoder(cfg config.Config, logger *slog.Logger) appgeo.Geocoder {
	if cfg.GeocoderURL != "" {
		return &geoclient.Client{
			HTTPClient: &http.Client{Timeout: cfg.GeocoderTimeout},
			Endpoint:   cfg.GeocoderURL,
			Logger:     logger,
		}
	}
	logger.Info("no geocoder configured, using static table")
	return geoclient.Static{Table: map[string]appgeo.Geocoded{
		"toronto":       {Country: "Canada", Admin: "Ontario", City: "Toronto"},
		"san francisco": {Country: "United States", Admin: "California", City: "San Francisco"},
		"los angeles":   {Country: "United States", Admin: "California", City: "Los Angeles"},
		"london":        {Country: "United Kingdom", Admin: "England", City: "London"},
		"dubai":         {Country: "United Arab Emirates", Admin: "Dubai", City: "Dubai"},
		"cancun":        {Country: "Mexico", Admin: "Quintana Roo", City: "Cancun"},
	}}
}

func buildPublisher(cfg config.Config, logger *slog.Logger) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, events disabled")
		return nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
	if err != nil {
		logger.Warn("kafka producer init failed, events disabled", "error", err)
		return nil
	}
	return producer
}

func buildUploader(cfg config.Config, logger *slog.Logger) resolve.ImageStore {
	if !cfg.S3Enabled {
		return nil
	}
	uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("s3 uploader init failed, image uploads disabled", "error", err)
		return nil
	}
	return uploader
}

// seedDemoAccounts provisions a host and a guest with live sessions so a
// fresh memory-mode instance is immediately usable. The minted tokens are
// logged once at startup.
func seedDemoAccounts(ctx context.Context, factory uow.Factory, sessions domainauth.SessionStore, ttl time.Duration, logger *slog.Logger) error {
	tokens := security.RandomTokenGenerator{}
	now := time.Now().UTC()

	accounts := []struct {
		id     domainuser.ID
		name   string
		wallet string
	}{
		{"demo-host", "Demo Host", "acct_demo_host"},
		{"demo-guest", "Demo Guest", ""},
	}
	for _, account := range accounts {
		u, err := domainuser.NewUser(domainuser.CreateParams{
			ID:        account.id,
			Name:      account.name,
			WalletID:  account.wallet,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		unit, err := factory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return err
		}
		if err := unit.Users().Save(ctx, u); err != nil {
			_ = unit.Rollback(ctx)
			return err
		}
		if err := unit.Commit(ctx); err != nil {
			return err
		}

		token, err := tokens.NewToken()
		if err != nil {
			return err
		}
		if err := sessions.Put(ctx, &domainauth.Session{
			Token:     domainauth.Token(token),
			UserID:    account.id,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}); err != nil {
			return err
		}
		logger.Info("demo account ready", "user_id", account.id, "token", token)
	}
	return nil
}
