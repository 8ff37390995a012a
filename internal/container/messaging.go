package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/shortlist-go/internal/analytics"
	analyticsstore "github.com/serroba/shortlist-go/internal/analytics/store"
	"github.com/serroba/shortlist-go/internal/messaging"
	"go.uber.org/zap"
)

const consumerGroupName = "shortlist-analytics"

// PublisherGroupPackage provides analytics publishers. Events go to Redis
// streams when analytics is enabled and are discarded otherwise.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			messaging.NewZapLogger(logger.Named("publisher")),
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.Publishers, error) {
		if !do.MustInvoke[*Options](i).Analytics {
			return analytics.DiscardPublishers(), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublishers(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers. Events are stored
// in Postgres when DatabaseURL is set and logged otherwise.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			return analyticsstore.NewNoop(logger), nil
		}

		pg := analyticsstore.NewPostgres(do.MustInvoke[*PostgresPool](i).Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}

		return pg, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*RedisClient](i).Client
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: consumerGroupName,
			},
			messaging.NewZapLogger(logger.Named("subscriber")),
		)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, do.MustInvoke[analytics.Store](i), logger)

		return group, nil
	})
}
