package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lodestar-ml/lodestar-go/internal/platform/auth"
	"github.com/lodestar-ml/lodestar-go/internal/platform/env"
	"github.com/lodestar-ml/lodestar-go/internal/platform/httpserver"
	"github.com/lodestar-ml/lodestar-go/internal/platform/objectstore"
	"github.com/lodestar-ml/lodestar-go/internal/platform/postgres"
	repopg "github.com/lodestar-ml/lodestar-go/internal/repo/postgres"
	collectionsvc "github.com/lodestar-ml/lodestar-go/internal/service/collections"
	storageobjectstore "github.com/lodestar-ml/lodestar-go/internal/storage/objectstore"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := env.String("ARTIFACT_REGISTRY_HTTP_ADDR", ":8084")
	shutdownTimeout, err := env.Duration("ARTIFACT_REGISTRY_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	presignTTL, err := env.Duration("ARTIFACT_REGISTRY_PRESIGN_TTL", 10*time.Minute)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}

	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(2)
	}
	db, err := postgres.Open(ctx, dbCfg)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	storeCfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid object store config", "error", err)
		os.Exit(2)
	}
	storeClient, err := objectstore.NewMinIOClient(storeCfg)
	if err != nil {
		logger.Error("object store client init failed", "error", err)
		os.Exit(2)
	}
	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := objectstore.EnsureBucket(startupCtx, storeClient, storeCfg); err != nil {
		cancel()
		logger.Error("object store unavailable", "error", err)
		os.Exit(1)
	}
	cancel()

	authCfg, err := auth.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid auth config", "error", err)
		os.Exit(2)
	}
	authenticator, err := auth.NewAuthenticator(ctx, authCfg)
	if err != nil {
		logger.Error("authenticator init failed", "error", err)
		os.Exit(2)
	}

	artifactStore, err := storageobjectstore.NewMinioStoreWithClient(storeClient)
	if err != nil {
		logger.Error("artifact object store init failed", "error", err)
		os.Exit(2)
	}

	service, err := collectionsvc.New(collectionsvc.Config{
		Repo:       repopg.NewCollectionStore(db),
		Store:      artifactStore,
		Bucket:     storeCfg.BucketArtifacts,
		PresignTTL: presignTTL,
		Lineage:    collectionsvc.NewDBLineageAppender(db),
	})
	if err != nil {
		logger.Error("collection service init failed", "error", err)
		os.Exit(2)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz("artifact-registry"))
	mux.HandleFunc(
		"/readyz",
		httpserver.Readyz(
			"artifact-registry",
			httpserver.ReadinessCheck{
				Name:  "postgres",
				Check: httpserver.WithTimeout(750*time.Millisecond, db.PingContext),
			},
			httpserver.ReadinessCheck{
				Name: "minio",
				Check: httpserver.WithTimeout(750*time.Millisecond, func(ctx context.Context) error {
					return objectstore.CheckBucket(ctx, storeClient, storeCfg)
				}),
			},
		),
	)

	api := newArtifactRegistryAPI(logger, service)
	api.register(mux)

	authMiddleware := auth.Middleware{
		Logger:        logger,
		Authenticator: authenticator,
		SkipPrefixes:  []string{"/healthz", "/readyz"},
	}
	handler := httpserver.Wrap(logger, authMiddleware.Wrap(mux))

	serverCfg := httpserver.Config{
		Service:         "artifact-registry",
		Addr:            addr,
		ShutdownTimeout: shutdownTimeout,
	}
	if err := httpserver.Run(ctx, logger, serverCfg, handler); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
