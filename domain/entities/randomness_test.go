package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomnessRecord_IsFresh(t *testing.T) {
	t.Parallel()

	record := &RandomnessRecord{SeedSlot: 200}
	assert.True(t, record.IsFresh(201))
	assert.False(t, record.IsFresh(200))
	assert.False(t, record.IsFresh(202))
}

func TestRandomnessRecord_IsRevealed(t *testing.T) {
	t.Parallel()

	revealSlot := int64(205)

	tests := []struct {
		name     string
		record   RandomnessRecord
		slot     int64
		expected bool
	}{
		{name: "no signature", record: RandomnessRecord{}, slot: 300, expected: false},
		{name: "reveal in future", record: RandomnessRecord{Signature: []byte{1}, RevealSlot: &revealSlot}, slot: 204, expected: false},
		{name: "reveal at slot", record: RandomnessRecord{Signature: []byte{1}, RevealSlot: &revealSlot}, slot: 205, expected: true},
		{name: "signature without slot", record: RandomnessRecord{Signature: []byte{1}}, slot: 300, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.record.IsRevealed(tt.slot))
		})
	}
}

func TestRandomnessRecord_RevealWindow(t *testing.T) {
	t.Parallel()

	record := &RandomnessRecord{SeedSlot: 200}
	assert.False(t, record.HasReveal())
	assert.False(t, record.CanRevealAt(200))
	assert.False(t, record.CanRevealAt(201))
	assert.True(t, record.CanRevealAt(202))

	revealSlot := int64(200)
	assert.True(t, (&RandomnessRecord{RevealSlot: &revealSlot}).HasReveal())
	assert.True(t, (&RandomnessRecord{Signature: []byte{1}}).HasReveal())
}

func TestRandomnessRecord_IsSignedBy(t *testing.T) {
	t.Parallel()

	record := &RandomnessRecord{PublicKey: []byte{1, 2, 3}}
	assert.True(t, record.IsSignedBy([]byte{1, 2, 3}))
	assert.False(t, record.IsSignedBy([]byte{1, 2, 4}))
	assert.False(t, record.IsSignedBy(nil))
	assert.False(t, (&RandomnessRecord{}).IsSignedBy(nil))
}

func TestRandomnessRecord_Message(t *testing.T) {
	t.Parallel()

	record := &RandomnessRecord{SeedSlot: 0x0102, Seed: []byte("abc")}
	assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 'a', 'b', 'c'}, record.Message())
}

func TestTransitionKind_IsAdministrative(t *testing.T) {
	t.Parallel()

	assert.True(t, TransitionCommitRandomness.IsAdministrative())
	assert.True(t, TransitionChooseWinner.IsAdministrative())
	assert.False(t, TransitionBuyTicket.IsAdministrative())
	assert.False(t, TransitionClaimPrize.IsAdministrative())
}

func TestRandomnessRecordAddress_BindsInputs(t *testing.T) {
	t.Parallel()

	key := []byte("public key")
	base := RandomnessRecordAddress(key, 200, []byte("seed"))

	assert.Equal(t, base, RandomnessRecordAddress(key, 200, []byte("seed")))
	assert.NotEqual(t, base, RandomnessRecordAddress(key, 201, []byte("seed")))
	assert.NotEqual(t, base, RandomnessRecordAddress(key, 200, []byte("other")))
	assert.NotEqual(t, base, RandomnessRecordAddress([]byte("other key"), 200, []byte("seed")))
}
