package interfaces

import (
	"context"

	"tokenlottery/domain/entities"
	"tokenlottery/events"

	"github.com/ethereum/go-ethereum/common"
)

// SlotClock reports the service's monotonic slot counter
type SlotClock interface {
	CurrentSlot(ctx context.Context) (int64, error)
}

// RandomnessOracle parses oracle records and reveals their value once resolved
type RandomnessOracle interface {
	// Parse loads the record at address
	Parse(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error)

	// Reveal returns the revealed value, or ErrRandomnessPending
	Reveal(ctx context.Context, record *entities.RandomnessRecord, currentSlot int64) (uint64, error)
}

// SignatureVerifier checks a beacon signature against its public key
type SignatureVerifier interface {
	Verify(publicKey, message, signature []byte) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// LotteryService defines the lottery state machine
type LotteryService interface {
	// InitializeConfig creates the lottery record owned by authority
	InitializeConfig(ctx context.Context, namespace string, authority common.Address, startSlot, endSlot, ticketPrice int64) (*entities.Lottery, error)

	// InitializeLottery creates the ticket collection through the registry
	InitializeLottery(ctx context.Context, namespace string, caller common.Address) (*entities.TicketCollection, error)

	// BuyTicket charges the payer and issues the next ticket
	BuyTicket(ctx context.Context, namespace string, payer common.Address) (*TicketPurchaseResult, error)

	// CommitRandomness locks in the oracle record that will decide the winner
	CommitRandomness(ctx context.Context, namespace string, caller, record common.Address) (*entities.Lottery, error)

	// ChooseWinner reveals the committed randomness and selects the winning sequence
	ChooseWinner(ctx context.Context, namespace string, caller, record common.Address) (*WinnerResult, error)

	// ClaimPrize pays the pot to the holder of the winning ticket
	ClaimPrize(ctx context.Context, namespace string, claimant, credentialID common.Address) (*ClaimResult, error)

	// GetLottery returns the lottery with its derived phase
	GetLottery(ctx context.Context, namespace string) (*LotteryView, error)

	// ListTickets returns the tickets owner holds in a lottery
	ListTickets(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error)

	// TransferTicket hands a ticket to another holder
	TransferTicket(ctx context.Context, namespace string, from, credentialID, to common.Address) (*entities.TicketCredential, error)
}

// TicketPurchaseResult is the outcome of BuyTicket
type TicketPurchaseResult struct {
	Lottery    *entities.Lottery
	Credential *entities.TicketCredential
}

// WinnerResult is the outcome of ChooseWinner
type WinnerResult struct {
	Lottery       *entities.Lottery
	RevealedValue uint64
}

// ClaimResult is the outcome of ClaimPrize. Amount is zero for a repeat claim.
type ClaimResult struct {
	Lottery    *entities.Lottery
	Credential *entities.TicketCredential
	Amount     int64
}

// LotteryView is a read-only snapshot of a lottery at a slot
type LotteryView struct {
	Lottery     *entities.Lottery
	Phase       entities.LotteryPhase
	CurrentSlot int64
	Recent      []*entities.LotteryTransition
}

// AccountService defines ledger operations exposed to operators
type AccountService interface {
	// Deposit funds an account
	Deposit(ctx context.Context, address common.Address, amount int64) (*entities.Account, error)

	// GetAccount returns an account, or an empty one if it was never funded
	GetAccount(ctx context.Context, address common.Address) (*entities.Account, error)
}

// RandomnessService accepts records published by the beacon operator
type RandomnessService interface {
	// PublishRecord stores a new unrevealed record
	PublishRecord(ctx context.Context, record *entities.RandomnessRecord) error

	// RevealRecord attaches a verified signature to a record at the current slot
	RevealRecord(ctx context.Context, address common.Address, signature []byte) (*entities.RandomnessRecord, error)
}
