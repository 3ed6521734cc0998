package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nitesh/gastronomos/internal/api"
	"github.com/nitesh/gastronomos/internal/bot"
	"github.com/nitesh/gastronomos/internal/config"
	"github.com/nitesh/gastronomos/internal/extract"
	"github.com/nitesh/gastronomos/internal/fetch"
	"github.com/nitesh/gastronomos/internal/geocode"
	"github.com/nitesh/gastronomos/internal/metrics"
	"github.com/nitesh/gastronomos/internal/places"
	"github.com/nitesh/gastronomos/internal/search"
	"github.com/nitesh/gastronomos/internal/service"
	"github.com/nitesh/gastronomos/internal/store"
)

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if port != "" {
		cfg.Port = port
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return cfg, logger, nil
}

func newPipeline(cfg *config.Config, log logrus.FieldLogger, m *metrics.Metrics) *extract.Pipeline {
	fetcher := fetch.New(fetch.Config{Timeout: cfg.FetchTimeout})
	geocoder := geocode.NewClient(cfg.NominatimURL, fetcher, log)
	return extract.NewPipeline(fetcher, geocoder, log, m)
}

// openDB connects to Postgres, retrying while the database starts up.
func openDB(dsn string, attempts int, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.WithError(err).Warnf("waiting for db: attempt %d", i+1)
		if i < attempts-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to db: %w", err)
	}
	if err := store.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func newPlaces(cfg *config.Config, log logrus.FieldLogger) (*places.Client, *redis.Client) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cache places.PhotoCache
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis ping failed, photo cache disabled")
	} else {
		cache = places.NewRedisPhotoCache(rdb, log)
	}
	return places.NewClient(cfg.PlacesAPIURL, cfg.PlacesAPIKey, nil, cache, log), rdb
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	m := metrics.New()

	db, err := openDB(cfg.DatabaseURL, 10, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := store.NewPgStore(db)

	placesClient, rdb := newPlaces(cfg, logger)
	defer rdb.Close()
	if !placesClient.Enabled() {
		logger.Warn("GOOGLE_PLACES_API_KEY not set, external search disabled")
	}

	pipeline := newPipeline(cfg, logger, m)
	searcher := search.NewSearcher(repo, placesClient, logger, m)
	svc := service.NewService(repo, pipeline, searcher, logger)

	if cfg.BotUserID == "" {
		logger.Warn("BOT_USER_ID not set, bot imports from unregistered senders will be rejected")
	}
	transport := bot.NewWebhookTransport(cfg.BotReplyWebhookURL, nil, logger)
	b := bot.New(svc, transport, bot.Config{
		GroupName:    cfg.GroupName,
		BotUserID:    cfg.BotUserID,
		DashboardURL: cfg.BotDashboardURL,
	}, logger, m)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.GetRegistry(), promhttp.HandlerOpts{})))
	api.RegisterRoutes(router, api.NewHandler(svc, b))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}
	cand := newPipeline(cfg, logger, nil).ExtractFromURL(cmd.Context(), args[0])
	return printJSON(cand)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setupCLI()
	if err != nil {
		return err
	}

	var st search.Store
	db, err := openDB(cfg.DatabaseURL, 1, logger)
	if err != nil {
		logger.WithError(err).Warn("database unavailable, searching external places only")
	} else {
		defer db.Close()
		st = store.NewPgStore(db)
	}
	placesClient, rdb := newPlaces(cfg, logger)
	defer rdb.Close()

	res := search.NewSearcher(st, placesClient, logger, nil).ChatSearch(cmd.Context(), strings.Join(args, " "))
	return printJSON(res)
}

// setupCLI is setup with logs kept off stdout, which carries the JSON result.
func setupCLI() (*config.Config, *logrus.Logger, error) {
	if logLevel == "" {
		logLevel = "warn"
	}
	return setup()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("request")
	}
}
