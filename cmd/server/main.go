package main

import (
	"fmt"
	"log/slog"

	"github.com/elmoushy/makanezm-backend/infra"
	infrarepo "github.com/elmoushy/makanezm-backend/infra/repository"
	"github.com/elmoushy/makanezm-backend/pkg/config"
	authsvc "github.com/elmoushy/makanezm-backend/pkg/service/auth"
	investmentsvc "github.com/elmoushy/makanezm-backend/pkg/service/investment"
	"github.com/elmoushy/makanezm-backend/webapi"
	investmentapi "github.com/elmoushy/makanezm-backend/webapi/investment"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(
		&infrarepo.Investment{},
		&infrarepo.Order{},
		&infrarepo.OrderItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	uow := infrarepo.NewUoW(db)
	invSvc := investmentsvc.NewService(uow, logger)
	authSvc := authsvc.New(cfg.Jwt, logger)

	app := webapi.NewApp(invSvc, authSvc, cfg, investmentapi.Routes)

	logger.Info("starting server", "env", cfg.Env, "port", cfg.Server.Port)
	return app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
}
