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

const lotteryColumns = `
	id, namespace, authority, start_slot, end_slot, ticket_price, pot_amount,
	total_tickets, randomness_record, winner_chosen, winner,
	collection_initialized, prize_claimed_at, created_at, updated_at`

// LotteryRepository implements lottery record access
type LotteryRepository struct {
	q Queryable
}

// NewLotteryRepository creates a new lottery repository
func NewLotteryRepository(db *database.DB) *LotteryRepository {
	return &LotteryRepository{q: db.Pool}
}

func newLotteryRepositoryWithTx(tx Queryable) *LotteryRepository {
	return &LotteryRepository{q: tx}
}

// Create inserts a new lottery, failing with ErrLotteryExists on a namespace conflict
func (r *LotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		INSERT INTO lotteries (namespace, authority, start_slot, end_slot, ticket_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.Namespace,
		lottery.Authority.Bytes(),
		lottery.StartSlot,
		lottery.EndSlot,
		lottery.TicketPrice,
	).Scan(&lottery.ID, &lottery.CreatedAt, &lottery.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrLotteryExists
	}
	if err != nil {
		return fmt.Errorf("failed to create lottery %s: %w", lottery.Namespace, err)
	}

	return nil
}

// GetByNamespace retrieves a lottery by namespace
func (r *LotteryRepository) GetByNamespace(ctx context.Context, namespace string) (*entities.Lottery, error) {
	query := `SELECT` + lotteryColumns + `
		FROM lotteries
		WHERE namespace = $1
	`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, namespace))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery %s: %w", namespace, err)
	}

	return lottery, nil
}

// GetByNamespaceForUpdate retrieves a lottery by namespace with a row lock
func (r *LotteryRepository) GetByNamespaceForUpdate(ctx context.Context, namespace string) (*entities.Lottery, error) {
	query := `SELECT` + lotteryColumns + `
		FROM lotteries
		WHERE namespace = $1
		FOR UPDATE
	`

	lottery, err := scanLottery(r.q.QueryRow(ctx, query, namespace))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery %s for update: %w", namespace, err)
	}

	return lottery, nil
}

// Update persists the mutable lottery fields
func (r *LotteryRepository) Update(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		UPDATE lotteries
		SET pot_amount = $2,
		    total_tickets = $3,
		    randomness_record = $4,
		    winner_chosen = $5,
		    winner = $6,
		    collection_initialized = $7,
		    prize_claimed_at = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.ID,
		lottery.PotAmount,
		lottery.TotalTickets,
		nullableAddress(lottery.RandomnessRecord),
		lottery.WinnerChosen,
		lottery.Winner,
		lottery.CollectionInitialized,
		lottery.PrizeClaimedAt,
	).Scan(&lottery.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lottery with ID %d not found", lottery.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update lottery %d: %w", lottery.ID, err)
	}

	return nil
}

func scanLottery(row pgx.Row) (*entities.Lottery, error) {
	var lottery entities.Lottery
	var authority, record []byte
	err := row.Scan(
		&lottery.ID,
		&lottery.Namespace,
		&authority,
		&lottery.StartSlot,
		&lottery.EndSlot,
		&lottery.TicketPrice,
		&lottery.PotAmount,
		&lottery.TotalTickets,
		&record,
		&lottery.WinnerChosen,
		&lottery.Winner,
		&lottery.CollectionInitialized,
		&lottery.PrizeClaimedAt,
		&lottery.CreatedAt,
		&lottery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lottery.Authority = common.BytesToAddress(authority)
	lottery.RandomnessRecord = addressFromNullable(record)
	return &lottery, nil
}
