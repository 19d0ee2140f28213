package repository

import (
	"context"
	"sync"
	"time"
)

type MemorySlotCache struct {
	entries sync.Map
	ttl     time.Duration
}

type slotEntry struct {
	slots     []string
	expiresAt time.Time
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{
		ttl: ttl,
	}
}

func (r *MemorySlotCache) GetBusySlots(ctx context.Context, tableID int64, date string) ([]string, bool, error) {
	val, ok := r.entries.Load(slotKey(tableID, date))
	if !ok {
		return nil, false, nil
	}
	entry := val.(*slotEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.entries.Delete(slotKey(tableID, date))
		return nil, false, nil
	}
	return entry.slots, true, nil
}

func (r *MemorySlotCache) SetBusySlots(ctx context.Context, tableID int64, date string, slots []string) error {
	if slots == nil {
		slots = []string{}
	}
	r.entries.Store(slotKey(tableID, date), &slotEntry{
		slots:     slots,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemorySlotCache) Invalidate(ctx context.Context, tableID int64, date string) error {
	r.entries.Delete(slotKey(tableID, date))
	return nil
}
