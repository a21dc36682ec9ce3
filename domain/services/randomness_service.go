package services

import (
	"context"
	"fmt"

	"tokenlottery/domain/entities"
	"tokenlottery/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

type randomnessService struct {
	recordRepo interfaces.RandomnessRecordRepository
	verifier   interfaces.SignatureVerifier
	clock      interfaces.SlotClock
	beaconKey  []byte
}

// NewRandomnessService creates a service accepting records of the beacon holding beaconKey
func NewRandomnessService(
	recordRepo interfaces.RandomnessRecordRepository,
	verifier interfaces.SignatureVerifier,
	clock interfaces.SlotClock,
	beaconKey []byte,
) interfaces.RandomnessService {
	return &randomnessService{
		recordRepo: recordRepo,
		verifier:   verifier,
		clock:      clock,
		beaconKey:  beaconKey,
	}
}

// PublishRecord stores a new unrevealed record. Records may not be seeded in the future.
func (s *randomnessService) PublishRecord(ctx context.Context, record *entities.RandomnessRecord) error {
	if record == nil || record.Address == (common.Address{}) || !record.IsSignedBy(s.beaconKey) {
		return entities.ErrInvalidRandomnessRecord
	}
	if record.Address != entities.RandomnessRecordAddress(record.PublicKey, record.SeedSlot, record.Seed) {
		return entities.ErrInvalidRandomnessRecord
	}
	if len(record.Signature) > 0 || record.RevealSlot != nil {
		return entities.ErrRandomnessAlreadyRevealed
	}

	slot, err := s.clock.CurrentSlot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current slot: %w", err)
	}
	if record.SeedSlot > slot || record.SeedSlot < 0 {
		return entities.ErrInvalidRandomnessRecord
	}

	existing, err := s.recordRepo.GetByAddress(ctx, record.Address)
	if err != nil {
		return fmt.Errorf("failed to get randomness record: %w", err)
	}
	if existing != nil {
		return entities.ErrInvalidRandomnessRecord
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create randomness record: %w", err)
	}

	log.WithFields(log.Fields{
		"record":   record.Address.Hex(),
		"seedSlot": record.SeedSlot,
	}).Info("Randomness record published")

	return nil
}

// RevealRecord attaches a verified signature to a record at the current slot
func (s *randomnessService) RevealRecord(ctx context.Context, address common.Address, signature []byte) (*entities.RandomnessRecord, error) {
	record, err := s.recordRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get randomness record: %w", err)
	}
	if record == nil {
		return nil, entities.ErrRandomnessRecordNotFound
	}
	if record.HasReveal() {
		return nil, entities.ErrRandomnessAlreadyRevealed
	}
	if !record.IsSignedBy(s.beaconKey) {
		return nil, entities.ErrInvalidRandomnessRecord
	}

	slot, err := s.clock.CurrentSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current slot: %w", err)
	}
	if !record.CanRevealAt(slot) {
		return nil, entities.ErrRevealTooEarly
	}

	if err := s.verifier.Verify(record.PublicKey, record.Message(), signature); err != nil {
		log.WithError(err).WithField("record", address.Hex()).Warn("Rejected randomness signature")
		return nil, entities.ErrInvalidRandomnessSignature
	}

	if err := s.recordRepo.Reveal(ctx, address, slot, signature); err != nil {
		return nil, fmt.Errorf("failed to reveal randomness record: %w", err)
	}

	record.Signature = signature
	record.RevealSlot = &slot
	return record, nil
}
