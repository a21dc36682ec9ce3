package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TransitionKind names a lottery state transition
type TransitionKind string

const (
	TransitionInitializeConfig  TransitionKind = "initialize_config"
	TransitionInitializeLottery TransitionKind = "initialize_lottery"
	TransitionBuyTicket         TransitionKind = "buy_ticket"
	TransitionCommitRandomness  TransitionKind = "commit_randomness"
	TransitionChooseWinner      TransitionKind = "choose_winner"
	TransitionClaimPrize        TransitionKind = "claim_prize"
	TransitionTransferTicket    TransitionKind = "transfer_ticket"
)

// IsAdministrative returns true if only the lottery authority may perform the transition
func (k TransitionKind) IsAdministrative() bool {
	switch k {
	case TransitionInitializeLottery, TransitionCommitRandomness, TransitionChooseWinner:
		return true
	default:
		return false
	}
}

// LotteryTransition is the audit record of one applied transition
type LotteryTransition struct {
	ID        int64          `db:"id"`
	LotteryID int64          `db:"lottery_id"`
	Kind      TransitionKind `db:"kind"`
	Actor     common.Address `db:"actor"`
	Slot      int64          `db:"slot"`
	Amount    int64          `db:"amount"`
	Metadata  map[string]any `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}
