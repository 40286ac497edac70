package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/distribuia/distribuia/core"
	"github.com/distribuia/distribuia/modules/conversion"
	"github.com/distribuia/distribuia/modules/emailprefs"
	"github.com/distribuia/distribuia/pkg/auth"
	"github.com/distribuia/distribuia/pkg/config"
	"github.com/distribuia/distribuia/pkg/csrf"
	"github.com/distribuia/distribuia/pkg/email"
	"github.com/distribuia/distribuia/pkg/httpserver"
	"github.com/distribuia/distribuia/pkg/logger"
	"github.com/distribuia/distribuia/pkg/metrics"
	"github.com/distribuia/distribuia/pkg/pg"
	"github.com/distribuia/distribuia/pkg/ratelimiter"
	redispkg "github.com/distribuia/distribuia/pkg/redis"
	"github.com/distribuia/distribuia/pkg/requestid"
	"github.com/distribuia/distribuia/pkg/unsubscribe"
	"github.com/distribuia/distribuia/pkg/usagecache"
)

// fileSenderDir is where outgoing email lands when Postmark is not
// configured.
const fileSenderDir = "./var/emails"

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		logCfg   logger.Config
		httpCfg  httpserver.Config
		pgCfg    pg.Config
		redisCfg redispkg.Config
		unsubCfg unsubscribe.Config
		emailCfg email.Config
		sessCfg  auth.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&unsubCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&sessCfg) },
	} {
		if err := load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	log := logger.New(logCfg)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Redis is optional: without it rate limiting and caching fall back to
	// in-process stores, which is fine for a single instance.
	var (
		limitStore  ratelimiter.Store
		cacheStore  usagecache.Store
		redisHealth func(context.Context) error
	)
	if redisCfg.Enabled() {
		client, err := redispkg.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		limitStore, err = ratelimiter.NewRedisStore(client, redisCfg.OpTimeout)
		if err != nil {
			return fmt.Errorf("create rate limit store: %w", err)
		}
		cacheStore = usagecache.NewRedisStore(client, redisCfg.OpTimeout)
		redisHealth = redispkg.Healthcheck(client)
	} else {
		log.Warn("redis not configured, using in-process rate limiting and cache")
		memStore := ratelimiter.NewMemoryStore()
		defer memStore.Close()
		limitStore = memStore
		cacheStore = usagecache.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	denied := ratelimiter.WithDenialObserver(collector.RecordRateLimited)

	apiLimiter, err := ratelimiter.New(limitStore, ratelimiter.PolicyAPI, log, denied)
	if err != nil {
		return err
	}
	genLimiter, err := ratelimiter.New(limitStore, ratelimiter.PolicyGeneration, log, denied)
	if err != nil {
		return err
	}
	unsubLimiter, err := ratelimiter.New(limitStore, ratelimiter.PolicyUnsubscribe, log, denied)
	if err != nil {
		return err
	}
	cache := usagecache.New(cacheStore, log)

	tokens, err := unsubscribe.New(unsubCfg)
	if err != nil {
		return fmt.Errorf("create unsubscribe tokenizer: %w", err)
	}
	validator, err := auth.NewCookieValidator(sessCfg)
	if err != nil {
		return fmt.Errorf("create session validator: %w", err)
	}

	var sender email.Sender
	if emailCfg.PostmarkServerToken != "" {
		sender, err = email.NewPostmarkSender(emailCfg)
		if err != nil {
			return fmt.Errorf("create postmark sender: %w", err)
		}
	} else {
		log.Warn("postmark not configured, writing emails to disk", slog.String("dir", fileSenderDir))
		sender = email.NewFileSender(fileSenderDir)
	}

	prefsService := emailprefs.NewService(emailprefs.NewPgStorage(pool), tokens, cache, log)
	mailer := emailprefs.NewMailer(sender, prefsService, tokens, log)

	convService := conversion.NewService(
		conversion.NewPgStorage(pool),
		conversion.NewTemplateGenerator(),
		cache, collector, log,
		conversion.WithQuotaNotifier(quotaMailer{mailer: mailer}),
	)

	handler := buildRouter(routerDeps{
		log:            log,
		collector:      collector,
		gatherer:       registry,
		validator:      validator,
		apiLimiter:     apiLimiter,
		unsubLimiter:   unsubLimiter,
		conversions:    conversion.NewHandler(convService, genLimiter),
		prefs:          emailprefs.NewHandler(prefsService),
		deleteUserData: deleteUserDataHandler(convService, prefsService, log),
		pgHealth:       pg.Healthcheck(pool),
		redisHealth:    redisHealth,
	})

	return httpserver.Run(ctx, httpCfg, handler, log)
}

type routerDeps struct {
	log            *slog.Logger
	collector      *metrics.Collector
	gatherer       prometheus.Gatherer
	validator      auth.Validator
	apiLimiter     *ratelimiter.Limiter
	unsubLimiter   *ratelimiter.Limiter
	conversions    *conversion.Handler
	prefs          *emailprefs.Handler
	deleteUserData http.HandlerFunc
	pgHealth       func(context.Context) error
	redisHealth    func(context.Context) error
}

func buildRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(deps.collector.Middleware)
	r.Use(csrf.Middleware(deps.log))

	r.Get("/health", healthHandler(deps.pgHealth, deps.redisHealth))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.gatherer))

	userKey := func(r *http.Request) string {
		return ratelimiter.Identify(auth.UserIDFromContext(r.Context()), r)
	}
	ipKey := func(r *http.Request) string {
		return ratelimiter.Identify("", r)
	}

	sessioned := auth.Middleware(deps.validator)
	apiLimited := ratelimiter.Middleware(deps.apiLimiter, userKey)

	// The email preferences path is shared between the public unsubscribe
	// link (tokenized GET) and the authenticated settings read.
	unsubscribeFlow := ratelimiter.Middleware(deps.unsubLimiter, ipKey)(
		http.HandlerFunc(deps.prefs.Unsubscribe))
	prefsGet := sessioned(apiLimited(http.HandlerFunc(deps.prefs.Get)))

	r.Route("/api", func(api chi.Router) {
		api.Get("/user/email-preferences", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("token") {
				unsubscribeFlow.ServeHTTP(w, r)
				return
			}
			prefsGet.ServeHTTP(w, r)
		})

		api.Group(func(private chi.Router) {
			private.Use(sessioned)
			private.Use(apiLimited)
			private.Put("/user/email-preferences", deps.prefs.Update)
			private.Delete("/user/data", deps.deleteUserData)
			private.Mount("/", deps.conversions.Router())
		})
	})

	return r
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				core.Error(w, core.ErrInternal)
				return
			}
		}
		core.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// deleteUserDataHandler removes everything the service stores about the
// authenticated user. GDPR right-to-erasure endpoint.
func deleteUserDataHandler(conversions *conversion.Service, prefs *emailprefs.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			core.Error(w, core.ErrUnauthenticated)
			return
		}

		if err := conversions.DeleteUserData(r.Context(), user.ID); err != nil {
			log.ErrorContext(r.Context(), "user data deletion failed", slog.Any("error", err))
			core.Error(w, core.ErrInternal)
			return
		}
		if err := prefs.DeleteUserData(r.Context(), user.ID); err != nil {
			log.ErrorContext(r.Context(), "user data deletion failed", slog.Any("error", err))
			core.Error(w, core.ErrInternal)
			return
		}

		log.InfoContext(r.Context(), "user data deleted", slog.String("user_id", user.ID.String()))
		core.JSON(w, http.StatusOK, map[string]string{
			"message": "Tus datos se han eliminado correctamente.",
		})
	}
}

// quotaMailer adapts the consent-aware mailer to the conversion service's
// notifier hook.
type quotaMailer struct {
	mailer *emailprefs.Mailer
}

func (q quotaMailer) QuotaReached(ctx context.Context, user auth.User) error {
	if user.Email == "" {
		return nil
	}
	return q.mailer.Send(ctx, user.ID, user.Email, emailprefs.CategoryProduct, email.SendParams{
		Subject: "Has alcanzado el límite de conversiones de tu plan",
		BodyHTML: `<p>Has usado todas las conversiones de tu plan este mes.</p>` +
			`<p>Pásate a un plan superior para seguir convirtiendo contenido sin esperar al próximo ciclo.</p>`,
	})
}
