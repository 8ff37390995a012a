package analytics

import (
	"github.com/serroba/shortlist-go/internal/messaging"
	"go.uber.org/zap"
)

// RegisterConsumers adds a consumer per topic to group, each persisting into store.
func RegisterConsumers(group *messaging.ConsumerGroup, store Store, logger *zap.Logger) {
	group.Add(messaging.NewConsumer[ShortlistCreatedEvent](
		group.Subscriber(),
		TopicShortlistCreated,
		store.SaveShortlistCreated,
		logger,
	))
	group.Add(messaging.NewConsumer[ShortlistViewedEvent](
		group.Subscriber(),
		TopicShortlistViewed,
		store.SaveShortlistViewed,
		logger,
	))
}
