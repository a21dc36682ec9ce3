package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLotteryConfigured   EventType = "lottery_configured"
	EventTypeCollectionCreated   EventType = "collection_created"
	EventTypeTicketPurchased     EventType = "ticket_purchased"
	EventTypeRandomnessCommitted EventType = "randomness_committed"
	EventTypeWinnerChosen        EventType = "winner_chosen"
	EventTypePrizeClaimed        EventType = "prize_claimed"
	EventTypeTicketTransferred   EventType = "ticket_transferred"
)

// AllEventTypes lists every event type the lottery emits
var AllEventTypes = []EventType{
	EventTypeLotteryConfigured,
	EventTypeCollectionCreated,
	EventTypeTicketPurchased,
	EventTypeRandomnessCommitted,
	EventTypeWinnerChosen,
	EventTypePrizeClaimed,
	EventTypeTicketTransferred,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LotteryConfiguredEvent is emitted when a lottery record is created
type LotteryConfiguredEvent struct {
	Namespace   string `json:"namespace"`
	Authority   string `json:"authority"`
	StartSlot   int64  `json:"start_slot"`
	EndSlot     int64  `json:"end_slot"`
	TicketPrice int64  `json:"ticket_price"`
}

func (e LotteryConfiguredEvent) Type() EventType {
	return EventTypeLotteryConfigured
}

// CollectionCreatedEvent is emitted when the ticket collection is initialized
type CollectionCreatedEvent struct {
	Namespace     string `json:"namespace"`
	CollectionKey string `json:"collection_key"`
}

func (e CollectionCreatedEvent) Type() EventType {
	return EventTypeCollectionCreated
}

// TicketPurchasedEvent is emitted for every successful ticket purchase
type TicketPurchasedEvent struct {
	Namespace    string `json:"namespace"`
	Buyer        string `json:"buyer"`
	Sequence     int64  `json:"sequence"`
	CredentialID string `json:"credential_id"`
	Price        int64  `json:"price"`
	PotAmount    int64  `json:"pot_amount"`
}

func (e TicketPurchasedEvent) Type() EventType {
	return EventTypeTicketPurchased
}

// RandomnessCommittedEvent is emitted when the authority locks in an oracle record
type RandomnessCommittedEvent struct {
	Namespace string `json:"namespace"`
	Record    string `json:"record"`
	Slot      int64  `json:"slot"`
}

func (e RandomnessCommittedEvent) Type() EventType {
	return EventTypeRandomnessCommitted
}

// WinnerChosenEvent is emitted once the revealed randomness selects a winner
type WinnerChosenEvent struct {
	Namespace     string `json:"namespace"`
	Winner        int64  `json:"winner"`
	TotalTickets  int64  `json:"total_tickets"`
	RevealedValue uint64 `json:"revealed_value"`
	PotAmount     int64  `json:"pot_amount"`
}

func (e WinnerChosenEvent) Type() EventType {
	return EventTypeWinnerChosen
}

// PrizeClaimedEvent is emitted for every successful claim, including zero-value repeats
type PrizeClaimedEvent struct {
	Namespace string `json:"namespace"`
	Claimant  string `json:"claimant"`
	Sequence  int64  `json:"sequence"`
	Amount    int64  `json:"amount"`
}

func (e PrizeClaimedEvent) Type() EventType {
	return EventTypePrizeClaimed
}

// TicketTransferredEvent is emitted when a ticket changes holder
type TicketTransferredEvent struct {
	Namespace    string `json:"namespace"`
	CredentialID string `json:"credential_id"`
	Sequence     int64  `json:"sequence"`
	From         string `json:"from"`
	To           string `json:"to"`
}

func (e TicketTransferredEvent) Type() EventType {
	return EventTypeTicketTransferred
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every lottery event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never blocks a transition
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus flushing into real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the events waiting for Flush
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush emits every pending event. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	// Handlers outlive the transaction context
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
