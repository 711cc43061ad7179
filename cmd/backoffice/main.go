package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/salonos/salonos-backoffice/internal/config"
	"github.com/salonos/salonos-backoffice/internal/credentials"
	httptransport "github.com/salonos/salonos-backoffice/internal/http"
	"github.com/salonos/salonos-backoffice/internal/http/handler"
	httpmiddleware "github.com/salonos/salonos-backoffice/internal/http/middleware"
	"github.com/salonos/salonos-backoffice/internal/media"
	apimiddleware "github.com/salonos/salonos-backoffice/internal/middleware"
	"github.com/salonos/salonos-backoffice/internal/notifier"
	"github.com/salonos/salonos-backoffice/internal/provisioning"
	"github.com/salonos/salonos-backoffice/internal/repository"
	"github.com/salonos/salonos-backoffice/internal/server"
	"github.com/salonos/salonos-backoffice/internal/slug"
	"github.com/salonos/salonos-backoffice/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newIntakeRepository,
			newAccountRepository,
			newTenantRepository,
			newStagedAssetRepository,
			newObjectStore,
			newNotifier,
			newAllocator,
			newIssuer,
			newHasher,
			newPromoter,
			newMaterializer,
			newOrchestrator,
			newRateLimiter,
			newAdminAuth,
			newIntakeHandler,
			newAdminHandler,
			newAssetHandler,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newIntakeRepository(pool *pgxpool.Pool) repository.IntakeRepository {
	return repository.NewPostgresIntakeRepo(pool)
}

func newAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return repository.NewPostgresAccountRepo(pool)
}

func newTenantRepository(pool *pgxpool.Pool) repository.TenantRepository {
	return repository.NewPostgresTenantRepo(pool)
}

func newStagedAssetRepository(pool *pgxpool.Pool) repository.StagedAssetRepository {
	return repository.NewPostgresStagedAssetRepo(pool)
}

func newObjectStore(cfg config.Config, logger *zap.Logger) media.ObjectStore {
	return media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger)
}

func newNotifier(cfg config.Config, logger *zap.Logger) notifier.Notifier {
	if !cfg.MailEnabled || cfg.MailgunAPIKey == "" {
		logger.Warn("outbound mail disabled, credentials will only appear in provisioning responses")
		return notifier.Noop{}
	}
	return notifier.NewMailgunNotifier(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender, logger)
}

func newAllocator(tenants repository.TenantRepository, logger *zap.Logger) *slug.Allocator {
	return slug.NewAllocator(tenants, logger)
}

func newIssuer(accounts repository.AccountRepository) *credentials.Issuer {
	return credentials.NewIssuer(accounts)
}

func newHasher() credentials.Hasher {
	return credentials.BcryptHasher{}
}

func newPromoter(store media.ObjectStore, logger *zap.Logger) *media.Promoter {
	return media.NewPromoter(store, logger)
}

func newMaterializer(tenants repository.TenantRepository, logger *zap.Logger) *provisioning.Materializer {
	return provisioning.NewMaterializer(tenants, logger)
}

func newOrchestrator(
	intake repository.IntakeRepository,
	accounts repository.AccountRepository,
	tenants repository.TenantRepository,
	staged repository.StagedAssetRepository,
	allocator *slug.Allocator,
	issuer *credentials.Issuer,
	hasher credentials.Hasher,
	promoter *media.Promoter,
	materializer *provisioning.Materializer,
	n notifier.Notifier,
	logger *zap.Logger,
) *provisioning.Orchestrator {
	return provisioning.NewOrchestrator(intake, accounts, tenants, staged, allocator, issuer, hasher, promoter, materializer, n, logger)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newAdminAuth(cfg config.Config) *httpmiddleware.AdminAuth {
	return &httpmiddleware.AdminAuth{Token: cfg.AdminAPIToken}
}

func newIntakeHandler(intake repository.IntakeRepository, logger *zap.Logger) *handler.IntakeHandler {
	return handler.NewIntakeHandler(intake, logger)
}

func newAdminHandler(
	intake repository.IntakeRepository,
	accounts repository.AccountRepository,
	tenants repository.TenantRepository,
	orchestrator *provisioning.Orchestrator,
	cfg config.Config,
	logger *zap.Logger,
) *handler.AdminHandler {
	return handler.NewAdminHandler(intake, accounts, tenants, orchestrator, cfg.ProvisionTimeout, logger)
}

func newAssetHandler(staged repository.StagedAssetRepository, store media.ObjectStore, logger *zap.Logger) *handler.AssetHandler {
	return handler.NewAssetHandler(staged, store, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
