package entities

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RandomnessRecord is an oracle record bound to the slot its seed was published at.
// Signature stays empty until the beacon reveals it.
type RandomnessRecord struct {
	Address    common.Address `db:"address"`
	SeedSlot   int64          `db:"seed_slot"`
	Seed       []byte         `db:"seed"`
	PublicKey  []byte         `db:"public_key"`
	RevealSlot *int64         `db:"reveal_slot"`
	Signature  []byte         `db:"signature"`
	CreatedAt  time.Time      `db:"created_at"`
}

// IsRevealed returns true if the beacon has published a signature at or before slot
func (r *RandomnessRecord) IsRevealed(slot int64) bool {
	return len(r.Signature) > 0 && r.RevealSlot != nil && *r.RevealSlot <= slot
}

// HasReveal returns true once the beacon has published anything for the record
func (r *RandomnessRecord) HasReveal() bool {
	return len(r.Signature) > 0 || r.RevealSlot != nil
}

// CanRevealAt returns true if slot is past the commit window of the record.
// A record seeded at s is committed at s+1, so it reveals at s+2 at the earliest.
func (r *RandomnessRecord) CanRevealAt(slot int64) bool {
	return slot > r.SeedSlot+1
}

// IsSignedBy returns true if the record was published under the given beacon key
func (r *RandomnessRecord) IsSignedBy(publicKey []byte) bool {
	return len(publicKey) > 0 && bytes.Equal(r.PublicKey, publicKey)
}

// IsFresh returns true if the record was seeded exactly one slot before slot
func (r *RandomnessRecord) IsFresh(slot int64) bool {
	return r.SeedSlot == slot-1
}

// Message returns the bytes the beacon signs for this record
func (r *RandomnessRecord) Message() []byte {
	msg := make([]byte, 8, 8+len(r.Seed))
	binary.LittleEndian.PutUint64(msg, uint64(r.SeedSlot))
	return append(msg, r.Seed...)
}

// RandomnessRecordAddress derives the address a beacon publishes a record under
func RandomnessRecordAddress(publicKey []byte, seedSlot int64, seed []byte) common.Address {
	slot := make([]byte, 8)
	binary.LittleEndian.PutUint64(slot, uint64(seedSlot))
	return common.BytesToAddress(crypto.Keccak256(publicKey, slot, seed))
}

// ErrRandomnessPending is returned by an oracle whose record has not been revealed yet
var ErrRandomnessPending = errors.New("randomness pending")
