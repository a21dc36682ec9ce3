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

// RandomnessRepository stores records published by the randomness beacon
type RandomnessRepository struct {
	q Queryable
}

// NewRandomnessRepository creates a new randomness record repository
func NewRandomnessRepository(db *database.DB) *RandomnessRepository {
	return &RandomnessRepository{q: db.Pool}
}

func newRandomnessRepositoryWithTx(tx Queryable) *RandomnessRepository {
	return &RandomnessRepository{q: tx}
}

// Create stores a new unrevealed record
func (r *RandomnessRepository) Create(ctx context.Context, record *entities.RandomnessRecord) error {
	query := `
		INSERT INTO randomness_records (address, seed_slot, seed, public_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	seed := record.Seed
	if seed == nil {
		seed = []byte{}
	}

	err := r.q.QueryRow(ctx, query,
		record.Address.Bytes(),
		record.SeedSlot,
		seed,
		record.PublicKey,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create randomness record %s: %w", record.Address.Hex(), err)
	}

	return nil
}

// GetByAddress returns a record
func (r *RandomnessRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	query := `
		SELECT address, seed_slot, seed, public_key, reveal_slot, signature, created_at
		FROM randomness_records
		WHERE address = $1
	`

	var record entities.RandomnessRecord
	var raw []byte
	err := r.q.QueryRow(ctx, query, address.Bytes()).Scan(
		&raw,
		&record.SeedSlot,
		&record.Seed,
		&record.PublicKey,
		&record.RevealSlot,
		&record.Signature,
		&record.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get randomness record %s: %w", address.Hex(), err)
	}

	record.Address = common.BytesToAddress(raw)
	return &record, nil
}

// Reveal attaches the beacon signature to a record exactly once
func (r *RandomnessRepository) Reveal(ctx context.Context, address common.Address, slot int64, signature []byte) error {
	query := `
		UPDATE randomness_records
		SET reveal_slot = $2, signature = $3
		WHERE address = $1 AND signature IS NULL
	`

	result, err := r.q.Exec(ctx, query, address.Bytes(), slot, signature)
	if err != nil {
		return fmt.Errorf("failed to reveal randomness record %s: %w", address.Hex(), err)
	}

	if result.RowsAffected() == 0 {
		return entities.ErrRandomnessAlreadyRevealed
	}

	return nil
}
