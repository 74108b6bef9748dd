package bootstrap

import (
	"context"
	"fmt"

	"freight-broker-be/internal/config"
	"freight-broker-be/internal/controller"
	"freight-broker-be/internal/pkg/logger"
	"freight-broker-be/internal/pkg/mailer"
	"freight-broker-be/internal/pkg/serverutils"
	"freight-broker-be/internal/repository/unitofwork"
	"freight-broker-be/internal/service"
	"freight-broker-be/pkg/breaker"
	"freight-broker-be/pkg/clock"
	"freight-broker-be/pkg/dedup"
	"freight-broker-be/pkg/events"
	"freight-broker-be/pkg/metrics"

	pktNats "freight-broker-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	FreightController      controller.IFreightController
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	LedgerService   service.ILedgerService

	Logger  logger.ILogger
	Metrics *metrics.Collector

	closers []func()
}

// NewContainer refuses a configuration that would leave the API or the
// webhook unauthenticated.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	collector := metrics.NewCollector()
	clk := clock.NewSystemClock()
	c := &Container{Logger: sysLogger, Metrics: collector}

	breakerCfg := breaker.Config{
		FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
		Timeout:          cfg.Breaker.OpenTimeout,
	}
	onBreakerChange := func(name, from, to string) {
		sysLogger.Warn(logger.ModuleAlert, "Circuit breaker state changed", map[string]interface{}{
			"breaker": name,
			"from":    from,
			"to":      to,
		})
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(context.Background(), cfg.App.NatsURL, breaker.New("nats", breakerCfg, onBreakerChange))
		if err != nil {
			sysLogger.Warn(logger.ModuleHTTP, "Failed to connect to NATS, domain events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. Idempotency lookaside
	caches := []dedup.Cache{dedup.NewLocalCache(cfg.Ledger.CacheTTL)}
	if cfg.App.RedisURL != "" {
		redisCache, err := dedup.NewRedisCache(context.Background(), dedup.RedisConfig{
			URL:    cfg.App.RedisURL,
			Prefix: "broker:charge:",
			TTL:    cfg.Ledger.CacheTTL,
		})
		if err != nil {
			sysLogger.Warn(logger.ModuleLedger, "Failed to connect to Redis, using local cache only", map[string]interface{}{"error": err.Error()})
		} else {
			caches = append(caches, redisCache)
			c.closers = append(c.closers, func() { _ = redisCache.Close() })
		}
	}

	// 4. Operator alerts
	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" && len(cfg.SMTP.AlertTo) > 0 {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.SMTP.AlertTo,
		)
	}

	// 5. Services
	freightService := service.NewFreightService(uowFactory, clk, publisher, collector, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, clk, publisher, collector, sysLogger)
	reconcilerService := service.NewReconcilerService(
		uowFactory,
		clk,
		dedup.NewTiered(caches...),
		pubSub,
		cfg.Payment.AlertTopic,
		publisher,
		collector,
		sysLogger,
	)
	c.LedgerService = service.NewLedgerService(uowFactory, clk, cfg.Ledger.Retention, collector, sysLogger)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Payment.AlertTopic,
		emailService,
		breaker.New("smtp", breakerCfg, onBreakerChange),
		sysLogger,
	)

	// 6. Controllers
	auth := serverutils.JwtMiddleware(cfg.App.JwtSecret)
	c.FreightController = controller.NewFreightController(freightService, auth)
	c.SubscriptionController = controller.NewSubscriptionController(subscriptionService, auth)
	c.PaymentController = controller.NewPaymentController(reconcilerService, controller.WebhookAuth{
		Secret:        cfg.Payment.WebhookSecret,
		AllowUnsigned: cfg.Payment.AllowUnsigned,
	}, sysLogger)
	if cfg.Payment.WebhookSecret == "" {
		sysLogger.Warn(logger.ModuleReconciler, "Webhook signatures are not checked", nil)
	}

	return c, nil
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
