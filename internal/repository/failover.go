package repository

import (
	"context"
	"sync/atomic"
	"time"

	"stolik/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSlotCache serves from the primary cache until it errors, then
// trips to the fallback and retries the primary after a cooldown.
type FailoverSlotCache struct {
	primary   domain.SlotCache
	fallback  domain.SlotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSlotCache(primary, fallback domain.SlotCache, logger *zerolog.Logger) *FailoverSlotCache {
	return &FailoverSlotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSlotCache) GetBusySlots(ctx context.Context, tableID int64, date string) ([]string, bool, error) {
	if !r.isDown.Load() {
		slots, found, err := r.primary.GetBusySlots(ctx, tableID, date)
		if err == nil {
			return slots, found, nil
		}
		r.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		slots, found, err := r.primary.GetBusySlots(ctx, tableID, date)
		if err == nil {
			r.isDown.Store(false)
			return slots, found, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetBusySlots(ctx, tableID, date)
}

func (r *FailoverSlotCache) SetBusySlots(ctx context.Context, tableID int64, date string, slots []string) error {
	if !r.isDown.Load() {
		err := r.primary.SetBusySlots(ctx, tableID, date, slots)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetBusySlots(ctx, tableID, date, slots)
}

func (r *FailoverSlotCache) Invalidate(ctx context.Context, tableID int64, date string) error {
	if !r.isDown.Load() {
		err := r.primary.Invalidate(ctx, tableID, date)
		if err == nil {
			// Сбрасываем обе стороны: fallback мог накопить устаревшие слоты.
			return r.fallback.Invalidate(ctx, tableID, date)
		}
		r.logger.Error().Err(err).Msg("Primary slot cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.Invalidate(ctx, tableID, date)
}
