package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/oakline/planboard/internal/config"
	"github.com/oakline/planboard/internal/facet"
	"github.com/oakline/planboard/internal/loader"
	"github.com/oakline/planboard/internal/logger"
	"github.com/oakline/planboard/internal/mutation"
	"github.com/oakline/planboard/internal/permission"
	"github.com/oakline/planboard/internal/remote"
	"github.com/oakline/planboard/internal/scheduler"
	"github.com/oakline/planboard/internal/store"
)

// App is the application container (immutable dependencies + lifecycle
// context). It is not a request context; handlers should still use gin's
// request context.
type App struct {
	Config      *config.Config
	Remote      remote.Service
	Store       *store.BucketStore
	Coordinator *loader.Coordinator
	Projector   *facet.Projector
	Engine      *mutation.Engine
	Permissions *permission.Holder
	PermRepo    *permission.Repository

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

func New(cfg *config.Config, svc remote.Service, perms *permission.Holder, permRepo *permission.Repository) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if svc == nil {
		return nil, errors.New("remote service is nil")
	}
	if perms == nil {
		return nil, errors.New("permission holder is nil")
	}

	bucketStore := store.NewBucketStore()
	coordinator := loader.NewCoordinator(svc, bucketStore, cfg.Remote.PageLimit)
	projector := facet.NewProjector(bucketStore, perms, coordinator)
	engine := mutation.NewEngine(bucketStore, svc, coordinator, projector)

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:      cfg,
		Remote:      svc,
		Store:       bucketStore,
		Coordinator: coordinator,
		Projector:   projector,
		Engine:      engine,
		Permissions: perms,
		PermRepo:    permRepo,
		BaseCtx:     ctx,
		Cancel:      cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	a.Cancel()
}

// StartWatchers starts the permission file watcher and, when enabled, the
// periodic scope refresh scheduler.
func (a *App) StartWatchers() error {
	if a.Config.Permission.WatchEnabled && a.PermRepo != nil {
		if err := a.PermRepo.StartWatcher(a.BaseCtx, a.Permissions); err != nil {
			return fmt.Errorf("cannot start permission watcher: %w", err)
		}
		logger.WithComponent("app").Debug("permission file watcher started")
	}

	if a.Config.Misc.RefreshEnabled {
		s := scheduler.NewRefreshScheduler(a.Coordinator, a.Projector, a.Config.Misc.RefreshInterval)
		s.Start(a.BaseCtx)
	}
	return nil
}
