package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable is satisfied by both the pool and a transaction
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nullableAddress converts an optional address to a BYTEA argument
func nullableAddress(address *common.Address) []byte {
	if address == nil {
		return nil
	}
	return address.Bytes()
}

// addressFromNullable converts a scanned BYTEA column to an optional address
func addressFromNullable(raw []byte) *common.Address {
	if len(raw) == 0 {
		return nil
	}
	address := common.BytesToAddress(raw)
	return &address
}
