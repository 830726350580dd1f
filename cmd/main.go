package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consulio/auth-service/config"
	"github.com/consulio/auth-service/db"
	"github.com/consulio/auth-service/internal/auth/handler"
	repo "github.com/consulio/auth-service/internal/auth/repository/postgres"
	"github.com/consulio/auth-service/internal/auth/service"
	"github.com/consulio/auth-service/internal/janitor"
	"github.com/consulio/auth-service/internal/mailer"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer dbPool.Close()

	userRepo := repo.NewUserRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)
	refreshRepo := repo.NewRefreshTokenRepository(dbPool)
	revokedRepo := repo.NewRevokedTokenRepository(dbPool)
	resetRepo := repo.NewResetTokenRepository(dbPool)

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessExpiryMin, cfg.RefreshExpiryMin)
	accessEngine := service.NewAccessEngine(&cfg.Maintenance)

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser,
			cfg.SMTPPassword, cfg.MailFrom, cfg.ResetURLBase,
			time.Duration(cfg.ResetExpiryMin)*time.Minute)
	}

	userService := service.NewUserService(userRepo, sessionRepo, refreshRepo,
		revokedRepo, resetRepo, tokenService, mail, accessEngine, cfg, logger)

	authHandler := handler.NewAuthHandler(userService)
	adminHandler := handler.NewAdminHandler(authHandler, &cfg.Maintenance)

	go janitor.New(userService, time.Duration(cfg.CleanupIntervalMin)*time.Minute, logger).Run(ctx)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, adminHandler)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
