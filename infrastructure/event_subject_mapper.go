package infrastructure

import (
	"fmt"
	"strings"

	"tokenlottery/events"
)

// LotteryEventStream is the JetStream stream lottery events are published to
const LotteryEventStream = "lottery_events"

const subjectPrefix = "lottery."

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeLotteryConfigured:
		return "lottery.configured"
	case events.EventTypeCollectionCreated:
		return "lottery.collection.created"
	case events.EventTypeTicketPurchased:
		return "lottery.ticket.purchased"
	case events.EventTypeTicketTransferred:
		return "lottery.ticket.transferred"
	case events.EventTypeRandomnessCommitted:
		return "lottery.randomness.committed"
	case events.EventTypeWinnerChosen:
		return "lottery.winner.chosen"
	case events.EventTypePrizeClaimed:
		return "lottery.prize.claimed"
	default:
		return fmt.Sprintf("lottery.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "lottery.configured":
		return events.EventTypeLotteryConfigured
	case "lottery.collection.created":
		return events.EventTypeCollectionCreated
	case "lottery.ticket.purchased":
		return events.EventTypeTicketPurchased
	case "lottery.ticket.transferred":
		return events.EventTypeTicketTransferred
	case "lottery.randomness.committed":
		return events.EventTypeRandomnessCommitted
	case "lottery.winner.chosen":
		return events.EventTypeWinnerChosen
	case "lottery.prize.claimed":
		return events.EventTypePrizeClaimed
	default:
		return events.EventType(strings.TrimPrefix(subject, subjectPrefix+"unknown."))
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.configured",
		"lottery.collection.created",
		"lottery.ticket.purchased",
		"lottery.ticket.transferred",
		"lottery.randomness.committed",
		"lottery.winner.chosen",
		"lottery.prize.claimed",
	}
}
