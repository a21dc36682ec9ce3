package infrastructure

import (
	"context"
	"fmt"
	"time"
)

// WallSlotClock derives slots from wall-clock time: slot n starts at genesis + n*slotDuration
type WallSlotClock struct {
	genesis      time.Time
	slotDuration time.Duration
	now          func() time.Time
}

// NewWallSlotClock creates a slot clock anchored at genesis
func NewWallSlotClock(genesis time.Time, slotDuration time.Duration) *WallSlotClock {
	return &WallSlotClock{
		genesis:      genesis,
		slotDuration: slotDuration,
		now:          time.Now,
	}
}

// CurrentSlot returns the slot containing the current time
func (c *WallSlotClock) CurrentSlot(ctx context.Context) (int64, error) {
	return c.SlotAt(c.now())
}

// SlotAt returns the slot containing t. Times before genesis map to slot 0.
func (c *WallSlotClock) SlotAt(t time.Time) (int64, error) {
	if c.slotDuration <= 0 {
		return 0, fmt.Errorf("slot duration must be positive, got %s", c.slotDuration)
	}

	elapsed := t.Sub(c.genesis)
	if elapsed < 0 {
		return 0, nil
	}

	return int64(elapsed / c.slotDuration), nil
}

// SlotStart returns the wall-clock time slot begins at
func (c *WallSlotClock) SlotStart(slot int64) time.Time {
	return c.genesis.Add(time.Duration(slot) * c.slotDuration)
}
