package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pickemhq/pickem-backend/external/espn"
	"github.com/pickemhq/pickem-backend/internal/config"
	"github.com/pickemhq/pickem-backend/internal/domain/contest"
	"github.com/pickemhq/pickem-backend/internal/domain/group"
	"github.com/pickemhq/pickem-backend/internal/domain/pick"
	"github.com/pickemhq/pickem-backend/internal/infrastructure/account/janus"
	"github.com/pickemhq/pickem-backend/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-backend/internal/infrastructure/repository/postgres"
	"github.com/pickemhq/pickem-backend/internal/interfaces/httpapi"
	"github.com/pickemhq/pickem-backend/internal/platform/logging"
	"github.com/pickemhq/pickem-backend/internal/platform/resilience"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

// NewHTTPServer wires repositories, services and the HTTP surface. The
// returned cleanup releases whatever the wiring opened, such as the DB pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *slog.Logger, serviceLogger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	if serviceLogger == nil {
		serviceLogger = logging.NewNop()
	}

	cleanup := func() {}

	var (
		contestRepo contest.Repository
		pickRepo    pick.Repository
		groupRepo   group.Repository
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = db.Close() }
		contestRepo = postgres.NewContestRepository(db)
		pickRepo = postgres.NewPickRepository(db)
		groupRepo = postgres.NewGroupRepository(db)
	default:
		contestRepo = memory.NewContestRepository()
		pickRepo = memory.NewPickRepository()
		groupRepo = memory.NewGroupRepository(memory.SeedGroups(), memory.SeedMembers())
	}

	var provider usecase.ProviderClient
	if cfg.ESPNEnabled {
		provider = espn.NewClient(espn.ClientConfig{
			BaseURL:    cfg.ESPNBaseURL,
			Timeout:    cfg.ESPNTimeout,
			MaxRetries: cfg.ESPNMaxRetries,
			Logger:     serviceLogger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ESPNCircuitEnabled,
				FailureThreshold: cfg.ESPNCircuitFailureCount,
				OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
			},
		})
	} else {
		provider = &espn.MockProvider{}
	}

	var mapFetchKey usecase.FetchKeyMapper
	if cfg.Week0AliasEnabled {
		mapFetchKey = usecase.Week0FetchKey(cfg.Week0AliasSeasonType, cfg.Week0AliasWeek)
	}

	contestSvc := usecase.NewContestService(contestRepo, provider, mapFetchKey, serviceLogger)
	scoringSvc := usecase.NewScoringService(pickRepo, groupRepo, contestRepo, serviceLogger)
	pickSvc := usecase.NewPickService(pickRepo, contestSvc, groupRepo, scoringSvc, serviceLogger)

	verifier := janus.NewClient(
		&http.Client{Timeout: cfg.JanusTimeout},
		cfg.JanusBaseURL,
		cfg.JanusIntrospectPath,
		cfg.JanusAdminKey,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.JanusCircuitEnabled,
			FailureThreshold: cfg.JanusCircuitFailureCount,
			OpenTimeout:      cfg.JanusCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.JanusCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(contestSvc, pickSvc, scoringSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
