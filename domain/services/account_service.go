package services

import (
	"context"
	"fmt"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

type accountService struct {
	ledger interfaces.Ledger
}

// NewAccountService creates a new account service
func NewAccountService(ledger interfaces.Ledger) interfaces.AccountService {
	return &accountService{ledger: ledger}
}

// Deposit funds an account
func (s *accountService) Deposit(ctx context.Context, address common.Address, amount int64) (*entities.Account, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	if err := s.ledger.Credit(ctx, address, amount); err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}

	account, err := s.ledger.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s missing after deposit", address.Hex())
	}

	log.WithFields(log.Fields{
		"address": address.Hex(),
		"amount":  amount,
		"balance": account.Balance,
	}).Info("Account funded")

	return account, nil
}

// GetAccount returns an account, or an empty one if it was never funded
func (s *accountService) GetAccount(ctx context.Context, address common.Address) (*entities.Account, error) {
	account, err := s.ledger.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return &entities.Account{Address: address}, nil
	}
	return account, nil
}
