package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"referral-giveaway-bot/internal/bot"
	rcache "referral-giveaway-bot/internal/cache/redis"
	"referral-giveaway-bot/internal/common/logger"
	"referral-giveaway-bot/internal/config"
	apphttp "referral-giveaway-bot/internal/http"
	"referral-giveaway-bot/internal/platform/db"
	redisplatform "referral-giveaway-bot/internal/platform/redis"
	pgrepo "referral-giveaway-bot/internal/repository/postgres"
	"referral-giveaway-bot/internal/service/drawing"
	"referral-giveaway-bot/internal/service/notifications"
	"referral-giveaway-bot/internal/service/oracle"
	"referral-giveaway-bot/internal/service/season"
	"referral-giveaway-bot/internal/service/telegram"
	"referral-giveaway-bot/internal/service/tickets"
	"referral-giveaway-bot/internal/workers"
)

// @title           Referral Giveaway API
// @version         1.0
// @description     Mini-app and admin API of the referral giveaway bot. Authenticated endpoints require Telegram init_data.
// @BasePath        /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init_data string for authentication

func main() {
	// Create cancellable root context for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("referral-giveaway-bot", false)
		logger.Fatal().Err(err).Msg("config load")
	}
	logger.Init(cfg.ServiceName, cfg.Debug)
	admins, _ := cfg.AdminIDSet()

	pg, err := db.Open(ctx, cfg.Postgres.DSN, db.Options{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres open")
	}
	defer pg.Close()
	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(ctx, pg); err != nil {
			logger.Fatal().Err(err).Msg("postgres migrate")
		}
		logger.Info().Msg("database schema applied")
	}

	rdb, err := redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis open")
	}
	defer rdb.Close()

	// Repositories
	users := pgrepo.NewUserRepository(pg)
	referrals := pgrepo.NewReferralRepository(pg)
	settingsRepo := pgrepo.NewSettingsRepository(pg)
	winners := pgrepo.NewWinnerRepository(pg)

	// Services
	seasons := season.NewRegistry(pgrepo.NewSeasonRepository(pg), cfg.Giveaway.SeasonDuration).
		WithCache(rcache.NewSeasonCache(rdb, cfg.Giveaway.SeasonDuration))

	tg := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, 10*time.Second)
	membership := oracle.NewAdapter(tg, 5*time.Second)

	engine := tickets.NewService(users, referrals, seasons, membership, settingsRepo, tickets.Options{
		Channels:    cfg.Sponsors(),
		BotUsername: cfg.Telegram.BotUsername,
		Prize:       cfg.Giveaway.Prize,
		Rules: tickets.Rules{
			ActivationThreshold: cfg.Giveaway.ActivationThreshold,
			ReferralTicketCap:   cfg.Giveaway.ReferralTicketCap,
			WheelCooldown:       cfg.Giveaway.WheelCooldown,
		},
	}).WithSwitchCache(rcache.NewSettingsCache(rdb, time.Minute))

	notifier := notifications.NewService(tg)
	drawer := drawing.NewService(winners, seasons, cfg.Giveaway.Prize).WithNotifier(notifier)

	// Workers
	consumer, _ := os.Hostname()
	worker := workers.NewRedisStreamWorker(rdb, engine, cfg.EventsStream, consumer)
	go worker.Start(ctx)

	// HTTP
	router := apphttp.NewRouter(engine, drawer, rdb, apphttp.RouterConfig{
		BotToken:       cfg.Telegram.BotToken,
		InitDataTTL:    time.Duration(cfg.HTTP.InitDataTTL) * time.Second,
		CacheTTL:       cfg.HTTP.CacheTTL,
		CORSOrigins:    cfg.HTTP.CORSAllowedOrigins,
		AdminIDs:       admins,
		DefaultWinners: cfg.Giveaway.DefaultWinners,
		Debug:          cfg.Debug,
	})
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// Bot
	tb, err := bot.New(engine, drawer, notifier, rdb, bot.Options{
		Token:          cfg.Telegram.BotToken,
		APIURL:         cfg.Telegram.APIBaseURL,
		PollTimeout:    cfg.Telegram.PollTimeout,
		Admins:         admins,
		WebAppURL:      cfg.Telegram.WebAppURL,
		Stream:         cfg.EventsStream,
		DefaultWinners: cfg.Giveaway.DefaultWinners,
		SeasonLength:   cfg.Giveaway.SeasonDuration,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("bot init")
	}
	go tb.Start(ctx)

	logger.Info().
		Strs("sponsors", cfg.Sponsors()).
		Int("admins", len(admins)).
		Msg("referral giveaway bot started")

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	notifier.Wait()
	logger.Info().Msg("server stopped")
}
