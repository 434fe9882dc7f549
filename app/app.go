// Package app wires configuration, stores, services and the HTTP router into
// one explicitly constructed application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/weatherbackend/config"
	"github.com/princinho/weatherbackend/database"
	"github.com/princinho/weatherbackend/services"
	"github.com/princinho/weatherbackend/utils"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	client      *mongo.Client
	revocations database.RevocationStore

	Tokens   *services.TokenService
	Auth     *services.AuthService
	Stations *services.StationService

	router *gin.Engine
}

// New connects the configured stores, seeds the admin account and builds
// the router. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	var (
		users    database.UserStore
		stations database.StationStore
		db       *mongo.Database
	)
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, err := database.Connect(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		a.client = client
		db = client.Database(cfg.Mongo.Database)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			a.Close(ctx)
			return nil, err
		}
		users = database.NewUserRepository(db)
		stations = database.NewStationRepository(db)
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		users = database.NewMemoryUsers()
		stations = database.NewMemoryStations()
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}

	revocations, err := database.NewRevocationStore(ctx, cfg.Revocation, db, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.revocations = revocations

	a.Tokens = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revocations)
	a.Auth = services.NewAuthService(users, a.Tokens, cfg.Auth.AllowAdminSignup, logger)
	a.Stations = services.NewStationService(stations, logger)

	if err := utils.SeedAdminUser(ctx, users, cfg.Admin, logger); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.router = a.buildRouter()
	return a, nil
}

func (a *App) Router() http.Handler { return a.router }

// Run serves HTTP until ctx is cancelled, then shuts the server down within
// the configured timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: a.router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	})
	return g.Wait()
}

// Close disconnects the revocation store and the Mongo client.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.revocations != nil {
		if err := a.revocations.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mongo disconnect: %w", err))
		}
	}
	return errors.Join(errs...)
}
