package testutil

import (
	"fmt"

	"tokenlottery/domain/entities"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// TestAddress derives a stable address from a label
func TestAddress(label string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(label)))
}

// CreateTestLottery creates a lottery with the 100..200 window priced at 50
func CreateTestLottery(namespace string, authority common.Address) *entities.Lottery {
	lottery, err := entities.NewLottery(namespace, authority, 100, 200, 50)
	if err != nil {
		panic(fmt.Sprintf("invalid test lottery: %v", err))
	}
	return lottery
}

// CreateTestRandomnessRecord creates an unrevealed record seeded at seedSlot
func CreateTestRandomnessRecord(label string, seedSlot int64) *entities.RandomnessRecord {
	return &entities.RandomnessRecord{
		Address:   TestAddress(label),
		SeedSlot:  seedSlot,
		Seed:      []byte(label),
		PublicKey: []byte("public-key-" + label),
	}
}
