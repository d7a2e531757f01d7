package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/docutrust/docutrust/internal/config"
	"github.com/docutrust/docutrust/internal/infra/blob"
	"github.com/docutrust/docutrust/internal/infra/database"
	"github.com/docutrust/docutrust/internal/infra/repository"
	"github.com/docutrust/docutrust/internal/present/rest"
	"github.com/docutrust/docutrust/internal/present/rest/middleware"
	"github.com/docutrust/docutrust/internal/service"
	"github.com/docutrust/docutrust/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	if conf.EnableTrace {
		cleanup, err := setupTraceProvider(ctx, conf)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb, err := database.NewRedis(ctx, conf.RedisAddr, conf.RedisDB)
	if err != nil {
		slog.Error("failed to connect redis", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mc := database.NewMemcached(conf.MemcachedAddr)

	var blobs usecase.BlobStore
	switch conf.Storage.Backend {
	case "s3":
		s3, err := blob.NewS3Store(conf.Storage)
		if err != nil {
			slog.Error("failed to create s3 store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			slog.Error("failed to ensure bucket", slog.String("error", err.Error()))
			os.Exit(1)
		}
		blobs = s3
	default:
		fs, err := blob.NewFSStore(conf.Storage.Path)
		if err != nil {
			slog.Error("failed to create file store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		blobs = fs
	}

	documentRepo := repository.NewDocumentRepository(db)
	principalRepo := repository.NewPrincipalRepository(db, mc)

	eventService := service.NewEventService(rdb)
	authService := service.NewAuthService(&conf, principalRepo)

	documentUsecase := usecase.NewDocumentUsecase(documentRepo, principalRepo, blobs, eventService)
	verifyUsecase := usecase.NewVerifyUsecase(documentRepo, principalRepo, blobs)
	principalUsecase := usecase.NewPrincipalUsecase(principalRepo)

	handler := rest.NewHandler(documentUsecase, verifyUsecase, principalUsecase, eventService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.EnableTrace {
		e.Use(otelecho.Middleware(conf.FQDN))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Listen))
}

func setupTraceProvider(ctx context.Context, conf config.Config) (func(), error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(conf.TraceEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := sdkresource.NewSchemaless(
		attribute.String("service.name", "docutrust"),
		attribute.String("service.instance.id", conf.FQDN),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("failed to shut down tracer provider", slog.String("error", err.Error()))
		}
	}, nil
}
