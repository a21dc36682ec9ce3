// Package apptest provides an in-memory unit of work for handler and API tests.
package apptest

import (
	"context"
	"sync"

	"tokenlottery/application"
	"tokenlottery/domain/interfaces"
	"tokenlottery/domain/testhelpers"
	"tokenlottery/events"
)

// MemoryUnitOfWorkFactory hands out units of work over one shared set of
// in-memory fakes. Commit flushes pending events into the bus, Rollback drops them.
type MemoryUnitOfWorkFactory struct {
	Lotteries   *testhelpers.FakeLotteryRepository
	Transitions *testhelpers.FakeTransitionLog
	Ledger      *testhelpers.FakeLedger
	Registry    *testhelpers.FakeTicketRegistry
	Records     *testhelpers.FakeRandomnessRecordRepository

	bus *events.Bus

	mu        sync.Mutex
	commits   int
	rollbacks int
}

func NewMemoryUnitOfWorkFactory(bus *events.Bus) *MemoryUnitOfWorkFactory {
	return &MemoryUnitOfWorkFactory{
		Lotteries:   testhelpers.NewFakeLotteryRepository(),
		Transitions: testhelpers.NewFakeTransitionLog(),
		Ledger:      testhelpers.NewFakeLedger(),
		Registry:    testhelpers.NewFakeTicketRegistry(),
		Records:     testhelpers.NewFakeRandomnessRecordRepository(),
		bus:         bus,
	}
}

func (f *MemoryUnitOfWorkFactory) Create() application.UnitOfWork {
	return &memoryUnitOfWork{factory: f, bus: events.NewTransactionalBus(f.bus)}
}

// Counts returns how many units of work committed and rolled back
func (f *MemoryUnitOfWorkFactory) Counts() (commits, rollbacks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

type memoryUnitOfWork struct {
	factory *MemoryUnitOfWorkFactory
	bus     *events.TransactionalBus
	ctx     context.Context
	active  bool
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	u.ctx = ctx
	u.active = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	u.active = false
	u.factory.mu.Lock()
	u.factory.commits++
	u.factory.mu.Unlock()
	return u.bus.Flush(u.ctx)
}

func (u *memoryUnitOfWork) Rollback() error {
	if !u.active {
		return nil
	}
	u.active = false
	u.factory.mu.Lock()
	u.factory.rollbacks++
	u.factory.mu.Unlock()
	u.bus.Discard()
	return nil
}

func (u *memoryUnitOfWork) LotteryRepository() interfaces.LotteryRepository {
	return u.factory.Lotteries
}

func (u *memoryUnitOfWork) TransitionLogRepository() interfaces.TransitionLogRepository {
	return u.factory.Transitions
}

func (u *memoryUnitOfWork) Ledger() interfaces.Ledger {
	return u.factory.Ledger
}

func (u *memoryUnitOfWork) TicketRegistry() interfaces.TicketRegistry {
	return u.factory.Registry
}

func (u *memoryUnitOfWork) RandomnessRecordRepository() interfaces.RandomnessRecordRepository {
	return u.factory.Records
}

func (u *memoryUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.bus
}

// EventRecorder collects events emitted on a bus
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Handle is an events.Handler
func (r *EventRecorder) Handle(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Types returns the types of every recorded event in arrival order
func (r *EventRecorder) Types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type())
	}
	return types
}
