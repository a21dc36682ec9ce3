package repository

import (
	"context"
	"errors"
	"fmt"

	"tokenlottery/database"
	"tokenlottery/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
)

// AccountRepository is the Postgres-backed ledger
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepositoryWithTx(tx Queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByAddress returns the account for an address, or nil if it was never funded
func (r *AccountRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.Account, error) {
	query := `
		SELECT address, balance, created_at, updated_at
		FROM accounts
		WHERE address = $1
	`

	var account entities.Account
	var raw []byte
	err := r.q.QueryRow(ctx, query, address.Bytes()).Scan(
		&raw,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", address.Hex(), err)
	}

	account.Address = common.BytesToAddress(raw)
	return &account, nil
}

// Debit removes amount from an account, failing with ErrInsufficientFunds
func (r *AccountRepository) Debit(ctx context.Context, address common.Address, amount int64) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE address = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, address.Bytes())
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", address.Hex(), err)
	}

	if result.RowsAffected() == 0 {
		return entities.ErrInsufficientFunds
	}

	return nil
}

// Credit adds amount to an account, creating it if needed
func (r *AccountRepository) Credit(ctx context.Context, address common.Address, amount int64) error {
	if amount <= 0 {
		return entities.ErrInvalidAmount
	}

	query := `
		INSERT INTO accounts (address, balance)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET balance = accounts.balance + EXCLUDED.balance, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, address.Bytes(), amount); err != nil {
		return fmt.Errorf("failed to credit account %s: %w", address.Hex(), err)
	}

	return nil
}
