package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tokenlottery/database"
	"tokenlottery/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

// TransitionRepository implements the lottery transition audit log
type TransitionRepository struct {
	q Queryable
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *database.DB) *TransitionRepository {
	return &TransitionRepository{q: db.Pool}
}

func newTransitionRepositoryWithTx(tx Queryable) *TransitionRepository {
	return &TransitionRepository{q: tx}
}

// Record appends a transition entry
func (r *TransitionRepository) Record(ctx context.Context, transition *entities.LotteryTransition) error {
	metadataJSON, err := json.Marshal(transition.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transition metadata: %w", err)
	}

	query := `
		INSERT INTO lottery_transitions (lottery_id, kind, actor, slot, amount, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		transition.LotteryID,
		string(transition.Kind),
		transition.Actor.Bytes(),
		transition.Slot,
		transition.Amount,
		metadataJSON,
	).Scan(&transition.ID, &transition.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s transition: %w", transition.Kind, err)
	}

	return nil
}

// ListByLottery returns the most recent transitions of a lottery, newest first
func (r *TransitionRepository) ListByLottery(ctx context.Context, lotteryID int64, limit int) ([]*entities.LotteryTransition, error) {
	query := `
		SELECT id, lottery_id, kind, actor, slot, amount, metadata, created_at
		FROM lottery_transitions
		WHERE lottery_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, lotteryID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions for lottery %d: %w", lotteryID, err)
	}
	defer rows.Close()

	var transitions []*entities.LotteryTransition
	for rows.Next() {
		var transition entities.LotteryTransition
		var kind string
		var actor, metadataJSON []byte
		err := rows.Scan(
			&transition.ID,
			&transition.LotteryID,
			&kind,
			&actor,
			&transition.Slot,
			&transition.Amount,
			&metadataJSON,
			&transition.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}

		transition.Kind = entities.TransitionKind(kind)
		transition.Actor = common.BytesToAddress(actor)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &transition.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transition metadata: %w", err)
			}
		}

		transitions = append(transitions, &transition)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transitions: %w", err)
	}

	return transitions, nil
}
