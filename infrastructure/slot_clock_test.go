package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWallSlotClock_SlotAt(t *testing.T) {
	t.Parallel()

	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewWallSlotClock(genesis, 400*time.Millisecond)

	tests := []struct {
		name     string
		at       time.Time
		expected int64
	}{
		{"before genesis", genesis.Add(-time.Hour), 0},
		{"at genesis", genesis, 0},
		{"inside first slot", genesis.Add(399 * time.Millisecond), 0},
		{"second slot boundary", genesis.Add(400 * time.Millisecond), 1},
		{"one minute in", genesis.Add(time.Minute), 150},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			slot, err := clock.SlotAt(tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slot)
		})
	}
}

func TestWallSlotClock_CurrentSlot(t *testing.T) {
	t.Parallel()

	genesis := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewWallSlotClock(genesis, time.Second)
	clock.now = func() time.Time { return genesis.Add(201*time.Second + 500*time.Millisecond) }

	slot, err := clock.CurrentSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(201), slot)
	assert.Equal(t, genesis.Add(201*time.Second), clock.SlotStart(slot))
}

func TestWallSlotClock_InvalidDuration(t *testing.T) {
	t.Parallel()

	clock := NewWallSlotClock(time.Now(), 0)

	_, err := clock.CurrentSlot(context.Background())
	assert.Error(t, err)
}
