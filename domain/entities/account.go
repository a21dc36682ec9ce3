package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Account holds the spendable balance of an address
type Account struct {
	Address   common.Address `db:"address"`
	Balance   int64          `db:"balance"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}
