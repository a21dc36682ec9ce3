package interfaces

import (
	"context"

	"tokenlottery/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

// LotteryRepository defines the interface for lottery record access
type LotteryRepository interface {
	// Create inserts a new lottery record, failing with ErrLotteryExists on a namespace conflict
	Create(ctx context.Context, lottery *entities.Lottery) error

	// GetByNamespace retrieves a lottery by namespace, returning nil if none exists
	GetByNamespace(ctx context.Context, namespace string) (*entities.Lottery, error)

	// GetByNamespaceForUpdate retrieves a lottery by namespace and locks its row
	GetByNamespaceForUpdate(ctx context.Context, namespace string) (*entities.Lottery, error)

	// Update persists every mutable field of the lottery
	Update(ctx context.Context, lottery *entities.Lottery) error
}

// TransitionLogRepository defines the interface for the transition audit log
type TransitionLogRepository interface {
	// Record appends a transition entry
	Record(ctx context.Context, transition *entities.LotteryTransition) error

	// ListByLottery returns the most recent transitions of a lottery, newest first
	ListByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotteryTransition, error)
}

// Ledger is the account-balance substrate holding and transferring value
type Ledger interface {
	// GetByAddress returns the account for an address, or nil if it has never been funded
	GetByAddress(ctx context.Context, address common.Address) (*entities.Account, error)

	// Debit removes amount from an account, failing with ErrInsufficientFunds
	Debit(ctx context.Context, address common.Address, amount int64) error

	// Credit adds amount to an account, creating it if needed
	Credit(ctx context.Context, address common.Address, amount int64) error
}

// TicketRegistry issues and verifies ticket credentials
type TicketRegistry interface {
	// CreateCollection creates and verifies the ticket collection for a namespace
	CreateCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error)

	// GetCollection returns the collection for a namespace, or nil
	GetCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error)

	// MintAndRegister issues one credential to owner tagged with sequence and verified in the collection
	MintAndRegister(ctx context.Context, owner, collectionKey common.Address, namespace string, sequence int64) (*entities.TicketCredential, error)

	// VerifyMembership reports whether a credential is a verified member of the collection
	VerifyMembership(ctx context.Context, credentialID, collectionKey common.Address) (bool, error)

	// GetCredential returns a credential by id, or nil
	GetCredential(ctx context.Context, credentialID common.Address) (*entities.TicketCredential, error)

	// HoldingAmount returns how many units of a credential holder owns
	HoldingAmount(ctx context.Context, credentialID, holder common.Address) (int64, error)

	// ListByOwner returns every credential owner holds in a namespace
	ListByOwner(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error)

	// Transfer moves a credential held by from to a new owner, failing with ErrNoTicket
	Transfer(ctx context.Context, credentialID, from, to common.Address) error
}

// RandomnessRecordRepository stores records published by the randomness beacon
type RandomnessRecordRepository interface {
	// Create stores a new unrevealed record
	Create(ctx context.Context, record *entities.RandomnessRecord) error

	// GetByAddress returns a record, or nil
	GetByAddress(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error)

	// Reveal attaches the beacon signature to a record at slot
	Reveal(ctx context.Context, address common.Address, slot int64, signature []byte) error
}
