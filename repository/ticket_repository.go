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

const credentialColumns = `
	id, namespace, sequence, owner, name, symbol, uri, collection_key,
	verified, amount, created_at`

// TicketRepository is the Postgres-backed ticket registry
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

func newTicketRepositoryWithTx(tx Queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// CreateCollection creates and verifies the ticket collection for a namespace
func (r *TicketRepository) CreateCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	collection := entities.NewTicketCollection(namespace)

	query := `
		INSERT INTO ticket_collections (namespace, collection_key, name, symbol, uri, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (namespace) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		collection.Namespace,
		collection.CollectionKey.Bytes(),
		collection.Name,
		collection.Symbol,
		collection.URI,
		collection.Verified,
	).Scan(&collection.ID, &collection.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrCollectionExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket collection %s: %w", namespace, err)
	}

	return collection, nil
}

// GetCollection returns the collection for a namespace
func (r *TicketRepository) GetCollection(ctx context.Context, namespace string) (*entities.TicketCollection, error) {
	query := `
		SELECT id, namespace, collection_key, name, symbol, uri, verified, created_at
		FROM ticket_collections
		WHERE namespace = $1
	`

	var collection entities.TicketCollection
	var key []byte
	err := r.q.QueryRow(ctx, query, namespace).Scan(
		&collection.ID,
		&collection.Namespace,
		&key,
		&collection.Name,
		&collection.Symbol,
		&collection.URI,
		&collection.Verified,
		&collection.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket collection %s: %w", namespace, err)
	}

	collection.CollectionKey = common.BytesToAddress(key)
	return &collection, nil
}

// MintAndRegister issues one credential to owner and registers it as a verified collection member
func (r *TicketRepository) MintAndRegister(ctx context.Context, owner, collectionKey common.Address, namespace string, sequence int64) (*entities.TicketCredential, error) {
	credential := entities.NewTicketCredential(namespace, owner, collectionKey, sequence)

	query := `
		INSERT INTO ticket_credentials
			(id, namespace, sequence, owner, name, symbol, uri, collection_key, verified, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		credential.ID.Bytes(),
		credential.Namespace,
		credential.Sequence,
		credential.Owner.Bytes(),
		credential.Name,
		credential.Symbol,
		credential.URI,
		credential.CollectionKey.Bytes(),
		credential.Verified,
		credential.Amount,
	).Scan(&credential.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mint ticket %d in %s: %w", sequence, namespace, err)
	}

	return credential, nil
}

// VerifyMembership reports whether a credential is a verified member of a verified collection
func (r *TicketRepository) VerifyMembership(ctx context.Context, credentialID, collectionKey common.Address) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM ticket_credentials t
			JOIN ticket_collections c ON c.collection_key = t.collection_key
			WHERE t.id = $1
			  AND t.collection_key = $2
			  AND t.verified
			  AND c.verified
		)
	`

	var member bool
	if err := r.q.QueryRow(ctx, query, credentialID.Bytes(), collectionKey.Bytes()).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to verify membership of %s: %w", credentialID.Hex(), err)
	}

	return member, nil
}

// GetCredential returns a credential by id
func (r *TicketRepository) GetCredential(ctx context.Context, credentialID common.Address) (*entities.TicketCredential, error) {
	query := `SELECT` + credentialColumns + `
		FROM ticket_credentials
		WHERE id = $1
	`

	credential, err := scanCredential(r.q.QueryRow(ctx, query, credentialID.Bytes()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket credential %s: %w", credentialID.Hex(), err)
	}

	return credential, nil
}

// HoldingAmount returns how many units of a credential holder owns
func (r *TicketRepository) HoldingAmount(ctx context.Context, credentialID, holder common.Address) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ticket_credentials
		WHERE id = $1 AND owner = $2
	`

	var amount int64
	if err := r.q.QueryRow(ctx, query, credentialID.Bytes(), holder.Bytes()).Scan(&amount); err != nil {
		return 0, fmt.Errorf("failed to get holding of %s: %w", credentialID.Hex(), err)
	}

	return amount, nil
}

// ListByOwner returns every credential owner holds in a namespace, by sequence
func (r *TicketRepository) ListByOwner(ctx context.Context, namespace string, owner common.Address) ([]*entities.TicketCredential, error) {
	query := `SELECT` + credentialColumns + `
		FROM ticket_credentials
		WHERE namespace = $1 AND owner = $2 AND amount > 0
		ORDER BY sequence
	`

	rows, err := r.q.Query(ctx, query, namespace, owner.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets of %s: %w", owner.Hex(), err)
	}
	defer rows.Close()

	var credentials []*entities.TicketCredential
	for rows.Next() {
		credential, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket credential: %w", err)
		}
		credentials = append(credentials, credential)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket credentials: %w", err)
	}

	return credentials, nil
}

// Transfer moves a credential to a new owner
func (r *TicketRepository) Transfer(ctx context.Context, credentialID, from, to common.Address) error {
	query := `
		UPDATE ticket_credentials
		SET owner = $3
		WHERE id = $1 AND owner = $2 AND amount > 0
	`

	result, err := r.q.Exec(ctx, query, credentialID.Bytes(), from.Bytes(), to.Bytes())
	if err != nil {
		return fmt.Errorf("failed to transfer ticket %s: %w", credentialID.Hex(), err)
	}

	if result.RowsAffected() == 0 {
		return entities.ErrNoTicket
	}

	return nil
}

func scanCredential(row pgx.Row) (*entities.TicketCredential, error) {
	var credential entities.TicketCredential
	var id, owner, key []byte
	err := row.Scan(
		&id,
		&credential.Namespace,
		&credential.Sequence,
		&owner,
		&credential.Name,
		&credential.Symbol,
		&credential.URI,
		&key,
		&credential.Verified,
		&credential.Amount,
		&credential.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	credential.ID = common.BytesToAddress(id)
	credential.Owner = common.BytesToAddress(owner)
	credential.CollectionKey = common.BytesToAddress(key)
	return &credential, nil
}
