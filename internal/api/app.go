package api

import (
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Repos() storage.Repositories
	Engine() *service.Engine
}

type app struct {
	logger internal.Logger
	repos  storage.Repositories
	engine *service.Engine
}

func NewApp(logger internal.Logger, repos storage.Repositories, engine *service.Engine) App {
	return &app{logger: logger, repos: repos, engine: engine}
}

func (a *app) Logger() internal.Logger     { return a.logger }
func (a *app) Repos() storage.Repositories { return a.repos }
func (a *app) Engine() *service.Engine     { return a.engine }
