// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/layer-3/sentinel/adapters/events"
	"github.com/layer-3/sentinel/adapters/mailer"
	"github.com/layer-3/sentinel/adapters/store"
	"github.com/layer-3/sentinel/adapters/tokenizer"
	"github.com/layer-3/sentinel/adapters/users"
	"github.com/layer-3/sentinel/internal/config"
	"github.com/layer-3/sentinel/internal/database"
	"github.com/layer-3/sentinel/internal/metrics"
	"github.com/layer-3/sentinel/ports"
	"github.com/layer-3/sentinel/service"
	httptransport "github.com/layer-3/sentinel/transport/http"
)

const memoryStoreCleanupInterval = time.Minute

type closer struct {
	name  string
	close func(ctx context.Context) error
}

// App is the assembled service
type App struct {
	config      *config.Config
	logger      *slog.Logger
	handler     http.Handler
	server      *http.Server
	rateLimiter *httptransport.IPRateLimiter
	closers     []closer
}

// NewLogger builds the process logger from the configured level and format
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// New builds every component selected by cfg. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			if closeErr := a.Close(context.Background()); closeErr != nil {
				logger.Error("failed to release resources", slog.Any("error", closeErr))
			}
		}
	}()

	tk, err := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret), cfg.TokenTTL, ports.SystemClock)
	if err != nil {
		return nil, err
	}

	kv, publisher, err := a.initStore(ctx)
	if err != nil {
		return nil, err
	}

	directory, err := a.initUserDirectory(ctx)
	if err != nil {
		return nil, err
	}

	svc := service.NewAuthService(
		tk,
		store.NewRevocationStore(kv, cfg.RevocationTTL),
		store.NewChallengeStore(kv, cfg.ChallengeTTL),
		directory,
		a.initSender(),
		events.NewWatermillPublisher(publisher),
		logger,
	)

	routerCfg := httptransport.RouterConfig{
		Cookie: httptransport.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure},
		Logger: logger,
	}

	var authenticator service.Authenticator = svc
	if cfg.MetricsEnabled {
		provider, err := metrics.NewProvider()
		if err != nil {
			return nil, err
		}
		a.addCloser("metrics", provider.Shutdown)

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), cfg.MetricsNamespace)
		if err != nil {
			return nil, err
		}

		authenticator = service.NewAuthServiceWithMetrics(svc, businessMetrics)
		routerCfg.MetricsHandler = provider.Handler()
	}

	if cfg.RateLimitEnabled {
		a.rateLimiter = httptransport.NewIPRateLimiter(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger)
		routerCfg.RateLimiter = a.rateLimiter
	}

	a.handler = httptransport.SetupRouter(authenticator, routerCfg)
	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort)),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// Handler returns the HTTP handler
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts the server down
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.rateLimiter != nil {
		g.Go(func() error {
			a.rateLimiter.Run(ctx)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases connections and publishers in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s close: %w", c.name, err))
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

func (a *App) addCloser(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, close: fn})
}

func (a *App) initStore(ctx context.Context) (ports.KVStore, message.Publisher, error) {
	wmLogger := watermill.NewSlogLogger(a.logger)

	if a.config.StoreDriver == config.DriverMemory {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		a.addCloser("events", func(context.Context) error { return pubSub.Close() })

		return store.NewMemoryStore(memoryStoreCleanupInterval), pubSub, nil
	}

	opts, err := redis.ParseURL(a.config.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	a.addCloser("redis", func(context.Context) error { return client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: client}, wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}
	a.addCloser("events", func(context.Context) error { return publisher.Close() })

	return store.NewRedisStore(client), publisher, nil
}

func (a *App) initUserDirectory(ctx context.Context) (ports.UserDirectory, error) {
	if a.config.UserStoreDriver == config.DriverMemory {
		return users.NewMemoryDirectory()
	}

	db, err := database.Connect(ctx, database.Config{
		ConnectionString:   a.config.DBConnectionString,
		MaxOpenConnections: a.config.DBMaxOpenConnections,
		MaxIdleConnections: a.config.DBMaxIdleConnections,
		ConnMaxLifetime:    a.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	a.addCloser("database", func(context.Context) error { return db.Close() })

	return users.NewPostgresDirectory(db)
}

func (a *App) initSender() ports.MessageSender {
	if a.config.MailerDriver == config.DriverSMTP {
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     a.config.SMTPHost,
			Port:     a.config.SMTPPort,
			Username: a.config.SMTPUsername,
			Password: a.config.SMTPPassword,
			From:     a.config.SMTPFrom,
			SSL:      a.config.SMTPSSL,
		}, a.logger)
	}

	a.logger.Warn("2FA codes are written to the log, set MAILER_DRIVER=smtp to deliver them")
	return mailer.NewLogSender(a.logger)
}
