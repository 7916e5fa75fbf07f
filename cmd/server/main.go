package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/cart/cache"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/settings"
	"storefront/internal/stripe"
	"storefront/pkg/metrics"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"storefront"`
	MigrationsDir    string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" default:"storefront"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	StripeBaseURL string        `envconfig:"STRIPE_BASE_URL" default:"https://api.stripe.com"`
	StripeTimeout time.Duration `envconfig:"STRIPE_TIMEOUT" default:"15s"`

	BootstrapAdmins []string `envconfig:"BOOTSTRAP_ADMINS" default:""`
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	var cfg Config
	if err := envconfig.Process("storefront", &cfg); err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	ctx := context.Background()

	// Postgres backs the catalog and the checkout session records.
	db, err := checkout.ConnectPostgres(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	catalogRepo := catalog.NewPostgresRepository(db)
	if err := catalogRepo.RunMigrations(cfg.MigrationsDir + "/catalog"); err != nil {
		log.WithError(err).Fatal("catalog migrations failed")
	}
	checkoutRepo := checkout.NewPostgresRepository(db)
	if err := checkoutRepo.RunMigrations(cfg.MigrationsDir + "/checkout"); err != nil {
		log.WithError(err).Fatal("checkout migrations failed")
	}
	log.Info("postgres connected, migrations applied")

	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer mongoDB.Client().Disconnect(ctx)
	cartRepo := cart.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.WithError(err).Fatal("failed to create cart indexes")
	}
	log.WithField("uri", cfg.MongoURI).Info("mongodb connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	cartCache := cache.NewRedisCache(redisClient)
	log.Info("redis ping succeeded")

	authSvc := auth.NewService(auth.NewMemoryStore(toPrincipals(cfg.BootstrapAdmins)...), log)
	catalogSvc := catalog.NewService(catalogRepo, authSvc, log)
	cartSvc := cart.NewService(cartRepo, cartCache, catalogSvc, log)
	settingsSvc := settings.NewService(settings.NewMemoryStore(), authSvc, log)
	gateway := stripe.NewHTTPClient(cfg.StripeBaseURL, cfg.StripeTimeout)
	checkoutSvc := checkout.NewService(cartSvc, settingsSvc, gateway, checkoutRepo, log, cfg.StripeTimeout)

	// Publish completed checkouts through the transactional outbox.
	writer := checkout.NewKafkaWriter(cfg.KafkaBrokers...)
	defer writer.Close()
	poller := checkout.NewOutboxPoller(checkoutRepo, writer, log)
	pollerCtx, stopPoller := context.WithCancel(ctx)
	go poller.Run(pollerCtx)

	srvMetrics := metrics.NewServerMetrics("server")
	router := api.NewRouter(api.Handlers{
		Products: api.NewProductHandler(catalogSvc),
		Cart:     api.NewCartHandler(cartSvc),
		Checkout: api.NewCheckoutHandler(checkoutSvc),
		Roles:    api.NewRoleHandler(authSvc),
		Settings: api.NewSettingsHandler(settingsSvc),
	}, srvMetrics, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopPoller()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server exited")
}

func toPrincipals(raw []string) []domain.Principal {
	out := make([]domain.Principal, 0, len(raw))
	for _, r := range raw {
		if r != "" {
			out = append(out, domain.Principal(r))
		}
	}
	return out
}
