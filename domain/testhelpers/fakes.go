package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"tokenlottery/domain/entities"
	"tokenlottery/events"

	"github.com/ethereum/go-ethereum/common"
)

// FakeClock is a settable SlotClock
type FakeClock struct {
	mu   sync.Mutex
	slot int64
}

func NewFakeClock(slot int64) *FakeClock {
	return &FakeClock{slot: slot}
}

func (c *FakeClock) CurrentSlot(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot, nil
}

func (c *FakeClock) Set(slot int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot = slot
}

// FakeLotteryRepository keeps lotteries in memory. Reads return copies so
// that mutations are only visible after Update, as with a rolled back transaction.
type FakeLotteryRepository struct {
	mu        sync.Mutex
	nextID    int64
	lotteries map[string]*entities.Lottery
}

func NewFakeLotteryRepository() *FakeLotteryRepository {
	return &FakeLotteryRepository{lotteries: make(map[string]*entities.Lottery)}
}

func (r *FakeLotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lotteries[lottery.Namespace]; ok {
		return entities.ErrLotteryExists
	}
	r.nextID++
	lottery.ID = r.nextID
	lottery.CreatedAt = time.Now()
	lottery.UpdatedAt = lottery.CreatedAt
	stored := *lottery
	r.lotteries[lottery.Namespace] = &stored
	return nil
}

func (r *FakeLotteryRepository) GetByNamespace(ctx context.Context, namespace string) (*entities.Lottery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.lotteries[namespace]
	if !ok {
		return nil, nil
	}
	lottery := *stored
	return &lottery, nil
}

func (r *FakeLotteryRepository) GetByNamespaceForUpdate(ctx context.Context, namespace string) (*entities.Lottery, error) {
	return r.GetByNamespace(ctx, namespace)
}

func (r *FakeLotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lottery.UpdatedAt = time.Now()
	stored := *lottery
	r.lotteries[lottery.Namespace] = &stored
	return nil
}

// FakeTransitionLog records transitions in memory
type FakeTransitionLog struct {
	mu          sync.Mutex
	transitions []*entities.LotteryTransition
}

func NewFakeTransitionLog() *FakeTransitionLog {
	return &FakeTransitionLog{}
}

func (l *FakeTransitionLog) Record(ctx context.Context, transition *entities.LotteryTransition) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	transition.ID = int64(len(l.transitions) + 1)
	transition.CreatedAt = time.Now()
	l.transitions = append(l.transitions, transition)
	return nil
}

func (l *FakeTransitionLog) ListByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotteryTransition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []*entities.LotteryTransition
	for i := len(l.transitions) - 1; i >= 0 && len(result) < limit; i-- {
		if l.transitions[i].LotteryID == lotteryID {
			result = append(result, l.transitions[i])
		}
	}
	return result, nil
}

// Kinds returns the recorded transition kinds in order
func (l *FakeTransitionLog) Kinds() []entities.TransitionKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]entities.TransitionKind, len(l.transitions))
	for i, t := range l.transitions {
		kinds[i] = t.Kind
	}
	return kinds
}

// FakeLedger holds balances in memory
type FakeLedger struct {
	mu       sync.Mutex
	balances map[common.Address]int64
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{balances: make(map[common.Address]int64)}
}

func (l *FakeLedger) Fund(address common.Address, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] += amount
}

func (l *FakeLedger) Balance(address common.Address) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[address]
}

func (l *FakeLedger) GetByAddress(ctx context.Context, address common.Address) (*entities.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[address]
	if !ok {
		return nil, nil
	}
	return &entities.Account{Address: address, Balance: balance}, nil
}

func (l *FakeLedger) Debit(ctx context.Context, address common.Address, amount int64) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[address] < amount {
		return entities.ErrInsufficientFunds
	}
	l.balances[address] -= amount
	return nil
}

func (l *FakeLedger) Credit(ctx context.Context, address common.Address, amount int64) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[address] += amount
	return nil
}

// FakeTicketRegistry issues credentials in memory
type FakeTicketRegistry struct {
	mu          sync.Mutex
	collections map[string]*entities.TicketCollection
	credentials map[common.Address]*entities.TicketCredential
}

func NewFakeTicketRegistry() *FakeTicketRegistry {
	return &FakeTicketRegistry{
		collections: make(map[string]*entities.TicketCollection),
		credentials: make(map[common.Address]*entities.TicketCredential),
	}
}

func (r *FakeTicketRegistry) CreateCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[namespace]; ok {
		return nil, entities.ErrCollectionExists
	}
	collection := entities.NewTicketCollection(namespace)
	collection.ID = int64(len(r.collections) + 1)
	collection.CreatedAt = time.Now()
	r.collections[namespace] = collection
	return collection, nil
}

func (r *FakeTicketRegistry) GetCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collections[namespace], nil
}

func (r *FakeTicketRegistry) MintAndRegister(ctx context.Context, owner, collectionKey common.Address, namespace string, sequence int64) (*entities.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credential := entities.NewTicketCredential(namespace, owner, collectionKey, sequence)
	credential.CreatedAt = time.Now()
	r.credentials[credential.ID] = credential
	copied := *credential
	return &copied, nil
}

func (r *FakeTicketRegistry) VerifyMembership(ctx context.Context, credentialID, collectionKey common.Address) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credential, ok := r.credentials[credentialID]
	return ok && credential.Verified && credential.CollectionKey == collectionKey, nil
}

func (r *FakeTicketRegistry) GetCredential(ctx context.Context, credentialID common.Address) (*entities.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credential, ok := r.credentials[credentialID]
	if !ok {
		return nil, nil
	}
	copied := *credential
	return &copied, nil
}

func (r *FakeTicketRegistry) HoldingAmount(ctx context.Context, credentialID, holder common.Address) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	credential, ok := r.credentials[credentialID]
	if !ok || credential.Owner != holder {
		return 0, nil
	}
	return credential.Amount, nil
}

func (r *FakeTicketRegistry) ListByOwner(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entities.TicketCredential
	for _, credential := range r.credentials {
		if credential.Namespace == namespace && credential.Owner == owner {
			copied := *credential
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (r *FakeTicketRegistry) Transfer(ctx context.Context, credentialID, from, to common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	credential, ok := r.credentials[credentialID]
	if !ok || credential.Owner != from || credential.Amount <= 0 {
		return entities.ErrNoTicket
	}
	credential.Owner = to
	return nil
}

// Unverify clears the verified flag of a credential
func (r *FakeTicketRegistry) Unverify(credentialID common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if credential, ok := r.credentials[credentialID]; ok {
		credential.Verified = false
	}
}

// FakeOracle resolves records to preset values
type FakeOracle struct {
	mu      sync.Mutex
	records map[common.Address]*entities.RandomnessRecord
	values  map[common.Address]uint64
}

func NewFakeOracle() *FakeOracle {
	return &FakeOracle{
		records: make(map[common.Address]*entities.RandomnessRecord),
		values:  make(map[common.Address]uint64),
	}
}

// Publish adds an unrevealed record seeded at seedSlot
func (o *FakeOracle) Publish(address common.Address, seedSlot int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records[address] = &entities.RandomnessRecord{Address: address, SeedSlot: seedSlot}
}

// Resolve reveals value for the record at revealSlot
func (o *FakeOracle) Resolve(address common.Address, revealSlot int64, value uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if record, ok := o.records[address]; ok {
		record.RevealSlot = &revealSlot
		record.Signature = []byte{1}
	}
	o.values[address] = value
}

func (o *FakeOracle) Parse(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	record, ok := o.records[address]
	if !ok {
		return nil, entities.ErrRandomnessRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (o *FakeOracle) Reveal(ctx context.Context, record *entities.RandomnessRecord, currentSlot int64) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !record.IsRevealed(currentSlot) {
		return 0, entities.ErrRandomnessPending
	}
	return o.values[record.Address], nil
}

// FakeRandomnessRecordRepository keeps beacon records in memory
type FakeRandomnessRecordRepository struct {
	mu      sync.Mutex
	records map[common.Address]*entities.RandomnessRecord
}

func NewFakeRandomnessRecordRepository() *FakeRandomnessRecordRepository {
	return &FakeRandomnessRecordRepository{records: make(map[common.Address]*entities.RandomnessRecord)}
}

func (r *FakeRandomnessRecordRepository) Create(ctx context.Context, record *entities.RandomnessRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.CreatedAt = time.Now()
	stored := *record
	r.records[record.Address] = &stored
	return nil
}

func (r *FakeRandomnessRecordRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[address]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r *FakeRandomnessRecordRepository) Reveal(ctx context.Context, address common.Address, slot int64, signature []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[address]
	if !ok || len(record.Signature) > 0 {
		return entities.ErrRandomnessAlreadyRevealed
	}
	record.RevealSlot = &slot
	record.Signature = append([]byte(nil), signature...)
	return nil
}

// RecordingPublisher keeps every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}
