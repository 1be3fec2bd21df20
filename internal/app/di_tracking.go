package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
	trackingRepository "github.com/allisson/parceltrack/internal/tracking/repository"
	"github.com/allisson/parceltrack/internal/tracking/service"
	trackingUsecase "github.com/allisson/parceltrack/internal/tracking/usecase"
)

// carrierInitTimeout bounds KMS and redis round trips while the carrier client is assembled.
const carrierInitTimeout = 15 * time.Second

// Classifier returns the status classifier built from the configured keywords.
func (c *Container) Classifier() *domain.Classifier {
	c.classifierInit.Do(func() {
		c.classifier = domain.NewClassifier(
			c.config.TrackingCriticalKeywords,
			c.config.TrackingDeliveredMarker,
		)
	})
	return c.classifier
}

// CarrierClient returns the carrier client used for lookups, wrapped by the configured cache.
func (c *Container) CarrierClient() (service.CarrierClient, error) {
	if err := c.initCarrierOnce(); err != nil {
		return nil, err
	}
	return c.carrierClient, nil
}

// DirectCarrierClient returns the carrier client without the response cache. The status
// probe and the reconciler use it so every call reaches the carrier.
func (c *Container) DirectCarrierClient() (service.CarrierClient, error) {
	if err := c.initCarrierOnce(); err != nil {
		return nil, err
	}
	return c.directClient, nil
}

// HistoryRepository returns the lookup history repository based on database driver.
func (c *Container) HistoryRepository() (trackingUsecase.HistoryRepository, error) {
	var err error
	c.historyRepoInit.Do(func() {
		c.historyRepo, err = c.initHistoryRepository()
		if err != nil {
			c.initErrors["historyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["historyRepo"]; exists {
		return nil, storedErr
	}
	return c.historyRepo, nil
}

// Reconciler returns the batch reconciler.
func (c *Container) Reconciler() (trackingUsecase.Reconciler, error) {
	var err error
	c.reconcilerInit.Do(func() {
		c.reconciler, err = c.initReconciler()
		if err != nil {
			c.initErrors["reconciler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["reconciler"]; exists {
		return nil, storedErr
	}
	return c.reconciler, nil
}

// Scheduler returns the single polling scheduler of the process.
func (c *Container) Scheduler() (*trackingUsecase.PollingScheduler, error) {
	var err error
	c.schedulerInit.Do(func() {
		c.scheduler, err = c.initScheduler()
		if err != nil {
			c.initErrors["scheduler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["scheduler"]; exists {
		return nil, storedErr
	}
	return c.scheduler, nil
}

// TrackingUseCase returns the on-demand lookup use case.
func (c *Container) TrackingUseCase() (trackingUsecase.TrackingUseCase, error) {
	var err error
	c.trackingUseCaseInit.Do(func() {
		c.trackingUseCase, err = c.initTrackingUseCase()
		if err != nil {
			c.initErrors["trackingUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["trackingUseCase"]; exists {
		return nil, storedErr
	}
	return c.trackingUseCase, nil
}

func (c *Container) initCarrierOnce() error {
	var err error
	c.carrierInit.Do(func() {
		err = c.initCarrier()
		if err != nil {
			c.initErrors["carrier"] = err
		}
	})
	if err != nil {
		return err
	}
	if storedErr, exists := c.initErrors["carrier"]; exists {
		return storedErr
	}
	return nil
}

// initCarrier selects the Correios client when an API key is configured and the simulated
// client otherwise, then wraps it with the response cache.
func (c *Container) initCarrier() error {
	logger := c.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), carrierInitTimeout)
	defer cancel()

	apiKey, err := service.ResolveAPIKey(
		ctx,
		service.NewKeeperOpener(),
		c.config.KMSKeyURI,
		c.config.TrackingCarrierAPIKeyCiphertext,
		c.config.TrackingCarrierAPIKey,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve carrier api key: %w", err)
	}

	var base service.CarrierClient
	if apiKey == "" {
		logger.Warn("carrier api key not configured, using simulated tracking data")
		base = service.NewSimulatedClient(nil, nil, logger)
		c.carrierSimulated = true
	} else {
		base = service.NewCorreiosClient(service.CorreiosConfig{
			BaseURL:   c.config.TrackingCarrierURL,
			APIKey:    apiKey,
			Timeout:   c.config.TrackingCarrierTimeout,
			RateLimit: c.config.TrackingCarrierRateLimit,
			RateBurst: c.config.TrackingCarrierRateBurst,
		}, nil, logger)
	}

	c.directClient = base
	c.carrierClient = base

	switch c.config.TrackingCacheDriver {
	case "", "none":
		return nil
	case "memory":
		c.eventCache = service.NewMemoryEventCache()
	case "redis":
		cache, err := service.NewRedisEventCache(ctx, service.RedisConfig{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis tracking cache: %w", err)
		}
		c.eventCache = cache
	default:
		return fmt.Errorf("unsupported tracking cache driver: %s", c.config.TrackingCacheDriver)
	}

	logger.Info("tracking cache enabled",
		slog.String("driver", c.config.TrackingCacheDriver),
		slog.Duration("ttl", c.config.TrackingCacheTTL),
	)
	c.carrierClient = service.NewCachedCarrierClient(base, c.eventCache, c.config.TrackingCacheTTL, logger)
	return nil
}

// initHistoryRepository creates the history repository instance.
func (c *Container) initHistoryRepository() (trackingUsecase.HistoryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for history repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return trackingRepository.NewMySQLHistoryRepository(db), nil
	case "postgres":
		return trackingRepository.NewPostgreSQLHistoryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initReconciler() (trackingUsecase.Reconciler, error) {
	carrier, err := c.DirectCarrierClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get carrier client for reconciler: %w", err)
	}

	trackingMetrics, err := c.TrackingMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking metrics for reconciler: %w", err)
	}

	return trackingUsecase.NewBatchReconciler(
		carrier,
		c.Classifier(),
		trackingUsecase.ReconcilerConfig{
			MaxConcurrency: c.config.TrackingMaxConcurrency,
			CallTimeout:    c.config.TrackingCarrierTimeout,
		},
		trackingMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initScheduler() (*trackingUsecase.PollingScheduler, error) {
	reconciler, err := c.Reconciler()
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciler for scheduler: %w", err)
	}

	trackingMetrics, err := c.TrackingMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking metrics for scheduler: %w", err)
	}

	return trackingUsecase.NewPollingScheduler(
		reconciler,
		trackingUsecase.SchedulerConfig{Interval: c.config.TrackingPollInterval},
		trackingMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initTrackingUseCase() (trackingUsecase.TrackingUseCase, error) {
	carrier, err := c.CarrierClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get carrier client for tracking use case: %w", err)
	}

	probe, err := c.DirectCarrierClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get probe client for tracking use case: %w", err)
	}

	historyRepo, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for tracking use case: %w", err)
	}

	baseUseCase := trackingUsecase.NewTrackingUseCase(
		carrier,
		probe,
		c.Classifier(),
		historyRepo,
		trackingUsecase.TrackingConfig{
			Simulated:      c.carrierSimulated,
			MaxConcurrency: c.config.TrackingMaxConcurrency,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for tracking use case: %w", err)
		}
		return trackingUsecase.NewTrackingUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
