package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// Oracle reads beacon records from the randomness record store and
// reveals their value once a valid signature has been published.
// Only records of the beacon holding beaconKey are accepted.
type Oracle struct {
	records   interfaces.RandomnessRecordRepository
	verifier  interfaces.SignatureVerifier
	beaconKey []byte
}

// NewOracle creates an oracle over records published by the beacon holding beaconKey
func NewOracle(records interfaces.RandomnessRecordRepository, verifier interfaces.SignatureVerifier, beaconKey []byte) *Oracle {
	return &Oracle{
		records:   records,
		verifier:  verifier,
		beaconKey: beaconKey,
	}
}

// Parse loads the record at address
func (o *Oracle) Parse(ctx context.Context, address common.Address) (*entities.RandomnessRecord, error) {
	record, err := o.records.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to load randomness record: %w", err)
	}
	if record == nil {
		return nil, entities.ErrRandomnessRecordNotFound
	}
	if !record.IsSignedBy(o.beaconKey) {
		log.WithField("record", address.Hex()).Warn("Rejected randomness record from unknown beacon")
		return nil, entities.ErrInvalidRandomnessRecord
	}

	return record, nil
}

// Reveal returns the value derived from the record's signature, or
// ErrRandomnessPending if the beacon has not revealed it by currentSlot
func (o *Oracle) Reveal(ctx context.Context, record *entities.RandomnessRecord, currentSlot int64) (uint64, error) {
	if !record.IsSignedBy(o.beaconKey) {
		return 0, entities.ErrInvalidRandomnessRecord
	}
	if !record.IsRevealed(currentSlot) {
		return 0, entities.ErrRandomnessPending
	}

	if err := o.verifier.Verify(record.PublicKey, record.Message(), record.Signature); err != nil {
		log.WithFields(log.Fields{
			"record":   record.Address.Hex(),
			"seedSlot": record.SeedSlot,
			"error":    err,
		}).Warn("Rejected randomness record with invalid signature")
		return 0, entities.ErrInvalidRandomnessSignature
	}

	return DeriveValue(record.Signature), nil
}

// DeriveValue maps a beacon signature to the revealed value:
// the first 8 bytes of sha256(signature), little endian
func DeriveValue(signature []byte) uint64 {
	digest := sha256.Sum256(signature)
	return binary.LittleEndian.Uint64(digest[:8])
}
