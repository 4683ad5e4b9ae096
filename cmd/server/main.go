package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/application/service"
	"github.com/lmasson/course-management/internal/auth"
	"github.com/lmasson/course-management/internal/config"
	"github.com/lmasson/course-management/internal/infrastructure/email"
	"github.com/lmasson/course-management/internal/infrastructure/persistence/repository"
	"github.com/lmasson/course-management/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/lmasson/course-management/internal/interfaces/http"
	"github.com/lmasson/course-management/pkg/database"
	"github.com/lmasson/course-management/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Course Management System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db.DB, logger)

	userRepo := repository.NewUserRepository(db.DB, logger)
	courseRepo := repository.NewCourseRepository(db.DB, logger)
	absenceRepo := repository.NewAbsenceRepository(db.DB, logger)

	notifier := newNotifier(cfg, logger)
	svcLogger := logger.Sugar()

	courseService := service.NewCourseService(courseRepo, userRepo, txManager, notifier, serviceLogger{svcLogger})
	absenceService := service.NewAbsenceService(absenceRepo, courseRepo, userRepo, txManager, notifier, serviceLogger{svcLogger})
	userService := service.NewUserService(userRepo, notifier, cfg.App.FrontendBaseURL, serviceLogger{svcLogger})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, courseService, absenceService, userService, tokens, serviceLogger{svcLogger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// newNotifier selects the notification transport from configuration.
func newNotifier(cfg *config.Config, logger *zap.Logger) port.Notifier {
	if cfg.Email.Backend == "smtp" {
		return email.NewSMTPNotifier(email.Config{
			Host:           cfg.Email.SMTPHost,
			Port:           cfg.Email.SMTPPort,
			Username:       cfg.Email.SMTPUsername,
			Password:       cfg.Email.SMTPPassword,
			FromAddress:    cfg.Email.FromAddress,
			FromName:       cfg.Email.FromName,
			DirectionEmail: cfg.Email.DirectionEmail,
		}, logger)
	}
	logger.Info("Using console email backend; no real mail will be sent")
	return email.NewConsoleNotifier(cfg.Email.DirectionEmail, logger)
}

// serviceLogger adapts zap's sugared logger to the application layer's
// logging interface.
type serviceLogger struct {
	s *zap.SugaredLogger
}

func (l serviceLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l serviceLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
