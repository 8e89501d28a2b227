package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"isp_billing_panel/internal/app"
	"isp_billing_panel/internal/domain/billing"
	"isp_billing_panel/internal/domain/client"
	"isp_billing_panel/internal/domain/notification"
	"isp_billing_panel/internal/domain/session"
	"isp_billing_panel/internal/infra/boltstore"
	"isp_billing_panel/internal/infra/broadcast"
	"isp_billing_panel/internal/infra/config"
	idb "isp_billing_panel/internal/infra/database"
	"isp_billing_panel/internal/infra/filestore"
	"isp_billing_panel/internal/infra/httpapi"
	"isp_billing_panel/internal/infra/logger"
	"isp_billing_panel/internal/infra/metrics"
	"isp_billing_panel/internal/infra/scheduler"
	infrasession "isp_billing_panel/internal/infra/session"
	"isp_billing_panel/internal/infra/smslog"
	"isp_billing_panel/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageDriver,
		"sessions":    cfg.SessionStore,
		"timezone":    cfg.Timezone,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	calendar, err := billing.LoadCalendar(cfg.Timezone)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid timezone")
	}

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				mainLogger.WithError(err).Warn("Error while closing resource")
			}
		}
	}()

	clientRepo, notificationRepo, closer, err := openStorage(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open storage")
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	mainLogger.WithField("driver", cfg.StorageDriver).Info("Storage ready")

	sessionStore, purger, closer, err := openSessionStore(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open session store")
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	panelMetrics := metrics.New()
	hub := broadcast.NewHub(0, logger.Component("broadcast"))

	var deliverers []app.Deliverer
	smsDeliverer, err := smslog.Open(cfg.SMSLogPath)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open SMS log")
	}
	closers = append(closers, smsDeliverer)
	deliverers = append(deliverers, smsDeliverer)

	var bot *telebot.Bot
	if cfg.TelegramEnabled() {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := logger.Component("telegram").WithError(err)
				if c != nil && c.Chat() != nil {
					entry = entry.WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		deliverers = append(deliverers, telegram.NewDeliverer(telegram.NewTelebotAdapter(bot), cfg.AlertTelegramChatID))
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, Telegram channel disabled")
	}

	notificationService := app.NewNotificationService(
		notificationRepo, hub, deliverers, calendar, panelMetrics, cfg.DeliveryTimeout, logger.Component("notifications"))
	clientService := app.NewClientService(clientRepo, notificationService, calendar, logger.Component("clients"))
	sweepService := app.NewSweepService(clientService, notificationService, calendar, panelMetrics, logger.Component("sweep"))
	authService := app.NewAuthService(
		config.NewFileCredentials(cfg.CredentialsPath(), logger.Component("auth")), sessionStore, cfg.SessionTTL, logger.Component("auth"))

	sweepScheduler := scheduler.NewSweepScheduler(
		sweepService, purger, calendar.Location(), cfg.CronSpecDailySweep, logger.Component("scheduler"))
	if err := sweepScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	if bot != nil {
		handlers := telegram.NewAdminHandlers(clientService, sweepService, cfg.AlertTelegramChatID, logger.Component("telegram"))
		handlers.RegisterBotCommands(bot)
		handlers.RegisterAdminHandlers(ctx, bot)
		handlers.RegisterPaymentCallback(ctx, bot)
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	api := httpapi.NewServer(clientService, notificationService, sweepService, authService, hub, httpapi.Options{
		PublicDir:    cfg.PublicDir,
		CookieSecure: cfg.CookieSecure,
		Metrics:      panelMetrics,
	}, logger.Component("http"))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		mainLogger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")

	// Live streams only end when the hub closes, so close it before draining HTTP.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	sweepScheduler.Stop()
	notificationService.Wait()
	mainLogger.Info("Application shut down gracefully.")
}

func openStorage(ctx context.Context, cfg *config.AppConfig) (client.Repository, notification.Repository, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.StorageBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, nil, err
		}
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store.Clients(), store.Notifications(), store, nil
	case config.StoragePostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return idb.NewPostgresClientRepository(db), idb.NewPostgresNotificationRepository(db), db, nil
	default:
		if err := filestore.EnsureFiles(cfg.DataDir, logger.Component("filestore")); err != nil {
			return nil, nil, nil, err
		}
		return filestore.NewClientRepository(cfg.DataDir), filestore.NewNotificationRepository(cfg.DataDir), nil, nil
	}
}

func openSessionStore(ctx context.Context, cfg *config.AppConfig) (session.Store, scheduler.Purger, io.Closer, error) {
	if cfg.SessionStore == config.SessionRedis {
		store, err := infrasession.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store, nil
	}
	store := infrasession.NewMemoryStore()
	return store, store, nil, nil
}
