package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/BillwoodMarbles/goal-tracker-sub000/internal"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/api"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/auth"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/config"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/service"
	"github.com/BillwoodMarbles/goal-tracker-sub000/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var repos storage.Repositories
	switch cfg.DBType {
	case "postgres":
		repos, err = storage.NewPostgresRepositories(cfg.DBDSN, logger)
	case "sqlite":
		repos, err = storage.NewSQLiteRepositories(cfg.SQLitePath, logger)
	default:
		repos, err = storage.NewFileRepositories(cfg.FileGoals, cfg.FileDaily, cfg.FileWeekly, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage (%s): %v", cfg.DBType, err)
	}
	defer repos.Close()

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.LocalToken, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthURL, logger)
	}

	engine := service.NewEngine(repos.Daily, repos.Weekly, nil)
	app := api.NewApp(logger, repos, engine)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r, app, auth.Middleware(provider, cfg))

	addr := ":" + cfg.Port
	logger.Infof("server running on %s (backend=%s)", addr, cfg.DBType)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
