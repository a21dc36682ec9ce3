package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultNamespace is the namespace tag used when a caller does not name one
const DefaultNamespace = "token_lottery"

// LotteryPhase is the derived position of a lottery in its lifecycle
type LotteryPhase string

const (
	LotteryPhaseConfigured          LotteryPhase = "configured"
	LotteryPhaseOpen                LotteryPhase = "open"
	LotteryPhaseSalesClosed         LotteryPhase = "sales_closed"
	LotteryPhaseRandomnessCommitted LotteryPhase = "randomness_committed"
	LotteryPhaseWinnerChosen        LotteryPhase = "winner_chosen"
	LotteryPhaseClaimed             LotteryPhase = "claimed"
)

// Lottery is the single persistent record for one lottery instance. It is
// also the escrow account for the pot.
type Lottery struct {
	ID                    int64           `db:"id"`
	Namespace             string          `db:"namespace"`
	Authority             common.Address  `db:"authority"`
	StartSlot             int64           `db:"start_slot"`
	EndSlot               int64           `db:"end_slot"`
	TicketPrice           int64           `db:"ticket_price"`
	PotAmount             int64           `db:"pot_amount"`
	TotalTickets          int64           `db:"total_tickets"`
	RandomnessRecord      *common.Address `db:"randomness_record"` // NULL until committed
	WinnerChosen          bool            `db:"winner_chosen"`
	Winner                int64           `db:"winner"`
	CollectionInitialized bool            `db:"collection_initialized"`
	PrizeClaimedAt        *time.Time      `db:"prize_claimed_at"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

// NewLottery builds a zeroed lottery owned by authority
func NewLottery(namespace string, authority common.Address, startSlot, endSlot, ticketPrice int64) (*Lottery, error) {
	if startSlot < 0 || startSlot >= endSlot {
		return nil, ErrInvalidSaleWindow
	}
	if ticketPrice <= 0 {
		return nil, ErrInvalidTicketPrice
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Lottery{
		Namespace:   namespace,
		Authority:   authority,
		StartSlot:   startSlot,
		EndSlot:     endSlot,
		TicketPrice: ticketPrice,
	}, nil
}

// IsOpen returns true if tickets may be sold at the given slot
func (l *Lottery) IsOpen(slot int64) bool {
	return slot >= l.StartSlot && slot <= l.EndSlot
}

// IsCompleted returns true once the sale window has been reached for winner selection
func (l *Lottery) IsCompleted(slot int64) bool {
	return slot >= l.EndSlot
}

// IsAuthority returns true if caller may perform administrative transitions
func (l *Lottery) IsAuthority(caller common.Address) bool {
	return caller == l.Authority
}

// HasCommitment returns true if a randomness record has been committed
func (l *Lottery) HasCommitment() bool {
	return l.RandomnessRecord != nil
}

// IsCommittedTo returns true if record is exactly the committed randomness record
func (l *Lottery) IsCommittedTo(record common.Address) bool {
	return l.RandomnessRecord != nil && *l.RandomnessRecord == record
}

// CommitRandomness records the oracle record that will decide the winner
func (l *Lottery) CommitRandomness(record common.Address) {
	l.RandomnessRecord = &record
}

// SelectWinner reduces the revealed value against the ticket count and latches the result
func (l *Lottery) SelectWinner(revealed uint64) int64 {
	l.Winner = int64(revealed % uint64(l.TotalTickets))
	l.WinnerChosen = true
	return l.Winner
}

// IsClaimed returns true if the pot has been paid out
func (l *Lottery) IsClaimed() bool {
	return l.PrizeClaimedAt != nil
}

// NextTicketSequence returns the sequence number the next ticket will carry
func (l *Lottery) NextTicketSequence() int64 {
	return l.TotalTickets
}

// Phase derives the lifecycle phase at the given slot
func (l *Lottery) Phase(slot int64) LotteryPhase {
	switch {
	case l.IsClaimed():
		return LotteryPhaseClaimed
	case l.WinnerChosen:
		return LotteryPhaseWinnerChosen
	case l.HasCommitment():
		return LotteryPhaseRandomnessCommitted
	case slot > l.EndSlot:
		return LotteryPhaseSalesClosed
	case l.IsOpen(slot):
		return LotteryPhaseOpen
	default:
		return LotteryPhaseConfigured
	}
}
