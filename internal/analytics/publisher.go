package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlist-go/internal/messaging"
)

// Publishers holds one typed publish function per topic.
type Publishers struct {
	Created messaging.Publish[ShortlistCreatedEvent]
	Viewed  messaging.Publish[ShortlistViewedEvent]
}

// NewPublishers binds both topics to publisher.
func NewPublishers(publisher message.Publisher) Publishers {
	return Publishers{
		Created: messaging.NewPublishFunc[ShortlistCreatedEvent](publisher, TopicShortlistCreated),
		Viewed:  messaging.NewPublishFunc[ShortlistViewedEvent](publisher, TopicShortlistViewed),
	}
}

// DiscardPublishers drops every event.
func DiscardPublishers() Publishers {
	return Publishers{
		Created: messaging.Discard[ShortlistCreatedEvent](),
		Viewed:  messaging.Discard[ShortlistViewedEvent](),
	}
}
