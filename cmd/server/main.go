package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	appctx "github.com/oakline/planboard/internal/app"
	route "github.com/oakline/planboard/internal/api/route"
	"github.com/oakline/planboard/internal/config"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/permission"
	"github.com/oakline/planboard/internal/remote"

	"github.com/enrichman/httpgrace"
)

func main() {
	// Optional .env for local development; real deployments set env vars directly.
	if err := godotenv.Load(); err == nil {
		logger.WithComponent("main").Debug("loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	logger.SetLevelFromString(cfg.Misc.LogLevel)
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)

	permRepo, err := permission.NewRepository(cfg.Permission.FilePath)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init permission repository: %v", err)
	}

	doc, err := permRepo.Load()
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot load permission file: %v", err)
	}
	perms := permission.NewHolder(doc)

	svc, err := remote.NewServiceFromConfig(cfg.Remote.Kind, cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.Timeout)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init remote service: %v", err)
	}

	app, err := appctx.New(cfg, svc, perms, permRepo)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		logger.WithComponent("main").Fatalf("cannot start watchers: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := route.SetupRoutes(app, logger.Logger)
	srv := createGraceHttpServer(app.BaseCtx, "planboard", app.Config.Server, r)

	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
