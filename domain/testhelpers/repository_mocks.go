package testhelpers

import (
	"context"

	"tokenlottery/domain/entities"
	"tokenlottery/events"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetByNamespace(ctx context.Context, namespace string) (*entities.Lottery, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetByNamespaceForUpdate(ctx context.Context, namespace string) (*entities.Lottery, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

// MockTransitionLogRepository is a mock implementation of TransitionLogRepository
type MockTransitionLogRepository struct {
	mock.Mock
}

func (m *MockTransitionLogRepository) Record(ctx context.Context, transition *entities.LotteryTransition) error {
	args := m.Called(ctx, transition)
	return args.Error(0)
}

func (m *MockTransitionLogRepository) ListByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotteryTransition, error) {
	args := m.Called(ctx, lotteryID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LotteryTransition), args.Error(1)
}

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetByAddress(ctx context.Context, address common.Address) (*entities.Account, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockLedger) Debit(ctx context.Context, address common.Address, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockLedger) Credit(ctx context.Context, address common.Address, amount int64) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

// MockTicketRegistry is a mock implementation of TicketRegistry
type MockTicketRegistry struct {
	mock.Mock
}

func (m *MockTicketRegistry) CreateCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketCollection), args.Error(1)
}

func (m *MockTicketRegistry) GetCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketCollection), args.Error(1)
}

func (m *MockTicketRegistry) MintAndRegister(ctx context.Context, owner, collectionKey common.Address, namespace string, sequence int64) (*entities.TicketCredential, error) {
	args := m.Called(ctx, owner, collectionKey, namespace, sequence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketCredential), args.Error(1)
}

func (m *MockTicketRegistry) VerifyMembership(ctx context.Context, credentialID, collectionKey common.Address) (bool, error) {
	args := m.Called(ctx, credentialID, collectionKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRegistry) GetCredential(ctx context.Context, credentialID common.Address) (*entities.TicketCredential, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TicketCredential), args.Error(1)
}

func (m *MockTicketRegistry) HoldingAmount(ctx context.Context, credentialID, holder common.Address) (int64, error) {
	args := m.Called(ctx, credentialID, holder)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRegistry) ListByOwner(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error) {
	args := m.Called(ctx, namespace, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TicketCredential), args.Error(1)
}

func (m *MockTicketRegistry) Transfer(ctx context.Context, credentialID, from, to common.Address) error {
	args := m.Called(ctx, credentialID, from, to)
	return args.Error(0)
}

// MockRandomnessRecordRepository is a mock implementation of RandomnessRecordRepository
type MockRandomnessRecordRepository struct {
	mock.Mock
}

func (m *MockRandomnessRecordRepository) Create(ctx context.Context, record *entities.RandomnessRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRandomnessRecordRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RandomnessRecord), args.Error(1)
}

func (m *MockRandomnessRecordRepository) Reveal(ctx context.Context, address common.Address, slot int64, signature []byte) error {
	args := m.Called(ctx, address, slot, signature)
	return args.Error(0)
}

// MockSlotClock is a mock implementation of SlotClock
type MockSlotClock struct {
	mock.Mock
}

func (m *MockSlotClock) CurrentSlot(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRandomnessOracle is a mock implementation of RandomnessOracle
type MockRandomnessOracle struct {
	mock.Mock
}

func (m *MockRandomnessOracle) Parse(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RandomnessRecord), args.Error(1)
}

func (m *MockRandomnessOracle) Reveal(ctx context.Context, record *entities.RandomnessRecord, currentSlot int64) (uint64, error) {
	args := m.Called(ctx, record, currentSlot)
	return args.Get(0).(uint64), args.Error(1)
}

// MockSignatureVerifier is a mock implementation of SignatureVerifier
type MockSignatureVerifier struct {
	mock.Mock
}

func (m *MockSignatureVerifier) Verify(publicKey, message, signature []byte) error {
	args := m.Called(publicKey, message, signature)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
