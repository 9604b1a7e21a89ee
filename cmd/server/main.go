package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/config"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/db"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/handler"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/repository"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/server"
	"github.com/marioblades-cmyk/flujo-de-caja-version-2/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		logger.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	// repositories
	shiftRepo := repository.ShiftRepository{DB: pg}
	movementRepo := repository.TransactionRepository{DB: pg}
	userRepo := repository.UserRepository{DB: pg}
	adminRepo := repository.AdminRepository{DB: pg}
	auditRepo := repository.AuditLogRepository{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	shiftSvc := service.ShiftService{Shifts: shiftRepo, Movements: movementRepo, Audit: auditRepo, Logger: logger}
	adminSvc := service.AdminService{Accounts: adminRepo, Audit: auditRepo, AuditLog: auditRepo, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	shiftHandler := handler.ShiftHandler{Service: shiftSvc}
	movementHandler := handler.TransactionHandler{Service: shiftSvc}
	exportHandler := handler.ExportHandler{Service: shiftSvc}
	adminHandler := handler.AdminHandler{Service: adminSvc}
	auditHandler := handler.AuditHandler{Admin: adminSvc}
	docsHandler := handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath}
	homeHandler := handler.HomeHandler{}

	router := server.NewRouter(cfg, logger, healthHandler, authHandler, shiftHandler, movementHandler, exportHandler, adminHandler, auditHandler, docsHandler, homeHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
