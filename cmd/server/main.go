package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/supplementsafetybible/backend/billing"
	"github.com/supplementsafetybible/backend/identity"
	"github.com/supplementsafetybible/backend/modules/authapi"
	"github.com/supplementsafetybible/backend/modules/billingapi"
	"github.com/supplementsafetybible/backend/modules/profileapi"
	"github.com/supplementsafetybible/backend/modules/reportapi"
	"github.com/supplementsafetybible/backend/modules/web"
	"github.com/supplementsafetybible/backend/modules/webhookapi"
	"github.com/supplementsafetybible/backend/pkg/config"
	"github.com/supplementsafetybible/backend/pkg/email"
	"github.com/supplementsafetybible/backend/pkg/httpserver"
	"github.com/supplementsafetybible/backend/pkg/logger"
	"github.com/supplementsafetybible/backend/pkg/pdf"
	"github.com/supplementsafetybible/backend/pkg/pg"
	"github.com/supplementsafetybible/backend/pkg/redis"
	"github.com/supplementsafetybible/backend/profile"
	"github.com/supplementsafetybible/backend/usage"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
}

func main() {
	var (
		appCfg      appConfig
		httpCfg     httpserver.Config
		pgCfg       pg.Config
		redisCfg    redis.Config
		emailCfg    email.Config
		identityCfg identity.Config
		stripeCfg   billing.StripeConfig
		priceCfg    billing.PriceConfig
		corsCfg     web.CORSConfig
		siteCfg     billingapi.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&identityCfg)
	config.MustLoad(&stripeCfg)
	config.MustLoad(&priceCfg)
	config.MustLoad(&corsCfg)
	config.MustLoad(&siteCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "ssb-backend"))
	logger.SetAsDefault(log)

	ctx := context.Background()

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		fatal(log, "failed to connect to postgres", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		fatal(log, "failed to apply migrations", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	var sender email.EmailSender
	if emailCfg.Configured() {
		sender, err = email.NewPostmarkClient(emailCfg)
		if err != nil {
			fatal(log, "failed to create email client", err)
		}
	} else {
		log.Warn("email delivery not configured, logging outgoing mail instead")
		sender = email.NewDevSender(log)
	}

	tokens, err := identity.NewTokenService(identityCfg.JWTSecret)
	if err != nil {
		fatal(log, "failed to create token service", err)
	}
	directory := identity.NewPGDirectory(pool, tokens, identityCfg)
	profiles := profile.NewPGStore(pool)

	provider := billing.NewStripeProvider(stripeCfg, priceCfg)
	guestCounter := usage.NewRedisGuestCounter(redisClient)
	reconciler := billing.NewReconciler(
		provider,
		directory,
		profiles,
		billing.NewPGRevenueStore(pool),
		billing.NewPGReferralStore(pool),
		guestCounter,
		priceCfg,
		log,
	)

	userGate := usage.NewGate(usage.NewPGCounter(pool), log)
	guestGate := usage.NewGate(guestCounter, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(web.CORS(corsCfg))

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Mount("/webhooks/stripe", webhookapi.NewService(provider, reconciler, log).Handle())
	r.Mount("/billing", billingapi.NewService(provider, profiles, tokens, directory, priceCfg, stripeCfg, siteCfg, log).Handle())
	r.Mount("/profile", profileapi.NewService(profiles, tokens, log).Handle())
	r.Mount("/reports", reportapi.NewService(profiles, tokens, userGate, guestGate, pdf.NewGenerator(), log).Handle())
	r.Mount("/auth", authapi.NewService(directory, sender, log).Handle())

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	log.Info("starting server", "addr", httpCfg.Addr, "environment", appCfg.Environment)
	if err := srv.Run(ctx, r); err != nil {
		fatal(log, "server stopped with error", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
