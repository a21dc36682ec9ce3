package services

import (
	"context"
	"fmt"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
)

// fundCustody moves value between ledger accounts and the pot held by the
// lottery record. Every call must run inside the transition's transaction.
type fundCustody struct {
	ledger interfaces.Ledger
}

func newFundCustody(ledger interfaces.Ledger) *fundCustody {
	return &fundCustody{ledger: ledger}
}

// Escrow charges payer the ticket price and adds it to the pot
func (c *fundCustody) Escrow(ctx context.Context, lottery *entities.Lottery, payer common.Address) error {
	if err := c.ledger.Debit(ctx, payer, lottery.TicketPrice); err != nil {
		return fmt.Errorf("failed to debit ticket price from %s: %w", payer.Hex(), err)
	}

	lottery.PotAmount += lottery.TicketPrice
	return nil
}

// Disburse pays the entire pot to claimant and zeroes it, returning the amount paid
func (c *fundCustody) Disburse(ctx context.Context, lottery *entities.Lottery, claimant common.Address) (int64, error) {
	amount := lottery.PotAmount
	if amount < 0 {
		return 0, fmt.Errorf("lottery %s has negative pot %d", lottery.Namespace, amount)
	}

	if amount > 0 {
		if err := c.ledger.Credit(ctx, claimant, amount); err != nil {
			return 0, fmt.Errorf("failed to credit prize to %s: %w", claimant.Hex(), err)
		}
	}

	lottery.PotAmount = 0
	return amount, nil
}
