package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/communityhub/community-services/internal/adapters/mongo"
	"github.com/communityhub/community-services/internal/adapters/rabbit"
	redisadapter "github.com/communityhub/community-services/internal/adapters/redis"
	"github.com/communityhub/community-services/internal/booking"
	"github.com/communityhub/community-services/internal/config"
	httphandler "github.com/communityhub/community-services/internal/http"
	"github.com/communityhub/community-services/internal/observability"
	"github.com/communityhub/community-services/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOTel()

	logger := observability.NewLogger()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	catalog := mongoadapter.NewCatalogRepository(db, logger)
	bookings := mongoadapter.NewBookingRepository(db, logger)
	audit := mongoadapter.NewAuditLogger(db, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	sessions := redisadapter.NewSessions(redisClient, cfg.SessionTTL)
	rl := ratelimit.NewRateLimiter(redisadapter.NewCache(redisClient))

	var publisher booking.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		pub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		publisher = pub
	} else {
		logger.Warn("RABBIT_URL not set, booking events disabled")
	}

	svc := booking.NewService(catalog, bookings, publisher, audit, logger)
	handlers := httphandler.NewHandlers(svc, catalog, logger)

	r := httphandler.SetupRouter(handlers, logger, sessions, rl, httphandler.RouterOptions{
		UserRateLimit: cfg.UserRateLimit,
		IPRateLimit:   cfg.IPRateLimit,
		RatePeriod:    cfg.RatePeriod,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
