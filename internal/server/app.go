// Package server assembles the wedding API: it opens Postgres, applies
// migrations, wires the RSVP, photo and admin services, and serves HTTP
// until SIGINT or SIGTERM, then drains pending confirmation emails.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thabitrevor/wedding/internal/logging"
	"github.com/thabitrevor/wedding/internal/server/config"
	"github.com/thabitrevor/wedding/internal/server/httpapi"
	"github.com/thabitrevor/wedding/internal/server/locks"
	"github.com/thabitrevor/wedding/internal/server/notify"
	"github.com/thabitrevor/wedding/internal/server/repositories/repomanager"
	"github.com/thabitrevor/wedding/internal/server/services"
)

const lockPrefix = "wedding:rsvp:"

// Seams for tests.
var (
	openDB         = repomanager.OpenPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	redis        redis.UniversalClient
	rsvpService  *services.RSVPService
	photoService *services.PhotoService
	adminService *services.AdminService
	mailer       *notify.MailNotifier
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	app.adminService, err = services.NewAdminService(logger.With("module", "admin"), c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	locker, err := app.initLocker(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: c.NotifyTimeout}
	app.mailer = notify.NewMailNotifier(notify.MailConfig{
		Endpoint: c.ResendEndpoint,
		APIKey:   c.ResendAPIKey,
		From:     c.MailFrom,
		ReplyTo:  c.MailReplyTo,
		Couple:   c.CoupleNames,
	}, httpClient)

	app.rsvpService = services.NewRSVPService(db, rm, app.notifier(httpClient), locker,
		logger.With("module", "rsvp"), c)
	app.photoService = services.NewPhotoService(db, rm, logger.With("module", "photos"), c)

	return app, nil
}

// notifier picks the external confirmation endpoint when one is configured,
// otherwise the built-in Resend mailer.
func (app *App) notifier(client *http.Client) notify.Notifier {
	if app.config.NotifyURL != "" {
		return notify.NewHTTPNotifier(app.config.NotifyURL, client)
	}
	return app.mailer
}

// initLocker connects to Redis when RedisAddr is set. Without it submissions
// are guarded by the unique index alone.
func (app *App) initLocker(ctx context.Context) (locks.Locker, error) {
	if app.config.RedisAddr == "" {
		return locks.NoopLocker{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	app.redis = rdb
	return locks.NewRedisLocker(rdb, lockPrefix, app.config.StoreTimeout*2), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) server() *httpapi.Server {
	return httpapi.NewServer(httpapi.Options{
		Address:        app.config.HTTPAddr,
		AllowedOrigins: app.config.AllowedOrigins,
		MaxUpload:      app.config.MaxPhotoSize,
	}, app.logger, httpapi.Deps{
		RSVPs:  app.rsvpService,
		Photos: app.photoService,
		Admin:  app.adminService,
		Mailer: app.mailer,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server().Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then waits for
// in-flight confirmation emails and releases connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "Waiting for pending confirmations...")
	app.rsvpService.Wait()
	app.close(ctx)
	app.logger.Info(ctx, "Stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
}
