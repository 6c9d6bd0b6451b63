package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/taskflow/notify/internal/api"
	"github.com/taskflow/notify/internal/api/middleware"
	"github.com/taskflow/notify/internal/config"
	"github.com/taskflow/notify/internal/dispatch"
	"github.com/taskflow/notify/internal/events"
	"github.com/taskflow/notify/internal/platform/kafka"
	"github.com/taskflow/notify/internal/platform/mailer"
	"github.com/taskflow/notify/internal/platform/postgres"
	"github.com/taskflow/notify/internal/push"
	"github.com/taskflow/notify/internal/registry"
	"github.com/taskflow/notify/internal/service/auth"
	"github.com/taskflow/notify/migrations"
)

// application holds the wired components of the notification service.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *registry.Registry
	emitter  *events.InMemoryEmitter
	consumer *kafka.Consumer
	handler  *chiHandler
}

// chiHandler bundles the router with the pieces it routes to.
type chiHandler struct {
	auth          *api.AuthHandler
	notifications *api.NotificationHandler
	stream        *api.StreamHandler
	events        *api.EventHandler
	authMW        *middleware.AuthMiddleware
	serviceMW     *middleware.ServiceTokenMiddleware
}

// newApplication connects to the database, applies migrations, and wires the
// delivery pipeline and HTTP handlers.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	notificationStore := postgres.NewNotificationStore(db, logger)
	membershipStore := postgres.NewMembershipStore(db, logger)
	userStore := postgres.NewUserStore(db)

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	connRegistry := registry.New(cfg.Dispatch.ConnectionBuffer)
	pushSender := push.NewSender(connRegistry, logger)

	var emailSender dispatch.EmailSender
	if cfg.Email.Enabled() {
		emailSender = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.Email.Host,
			Port:     strconv.Itoa(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, logger)
	} else {
		logger.Warn("no SMTP host configured, email delivery disabled")
		emailSender = mailer.NewLogSender(logger)
	}

	dispatcher := dispatch.New(
		notificationStore,
		membershipStore,
		userStore,
		pushSender,
		emailSender,
		dispatch.Config{WorkerCount: cfg.Dispatch.WorkerCount},
		logger,
	)

	emitter := events.NewInMemoryEmitter(logger)
	emitter.RegisterHandler(dispatcher)

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled() {
		consumer = kafka.NewConsumer(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, emitter, logger)
	}

	return &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: connRegistry,
		emitter:  emitter,
		consumer: consumer,
		handler: &chiHandler{
			auth:          api.NewAuthHandler(userStore, jwtService, logger),
			notifications: api.NewNotificationHandler(notificationStore, logger),
			stream:        api.NewStreamHandler(connRegistry, logger),
			events:        api.NewEventHandler(emitter, logger),
			authMW:        middleware.NewAuthMiddleware(jwtService),
			serviceMW:     middleware.NewServiceTokenMiddleware(cfg.Auth.ServiceToken),
		},
	}, nil
}

// close releases the application's external resources.
func (app *application) close() {
	if app.consumer != nil {
		if err := app.consumer.Close(); err != nil {
			app.logger.Warn("failed to close kafka consumer", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn("failed to close database", "error", err)
	}
}

// openDatabase opens and verifies the PostgreSQL connection.
func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// applyMigrations runs the embedded goose migrations to the latest version.
func applyMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("database migrations applied", "version", version)

	return nil
}
