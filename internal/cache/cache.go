package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/models"
	"github.com/redis/go-redis/v9"
)

const slotKeyPrefix = "slots:free:"

// SlotCache is a cache-aside layer over free-slot listings. Listings carry no
// correctness guarantee, so a short TTL bounds staleness and every slot
// mutation invalidates eagerly. A nil *SlotCache is a valid no-op cache.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{
		client: client,
		ttl:    ttl,
		log:    logger.New("slot-cache"),
	}
}

func (c *SlotCache) GetFreeSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, bool) {
	if c == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, key(withinDays)).Result()
	if err != nil {
		return nil, false
	}

	var slots []*models.TimeSlot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		c.log.Warn("failed to decode cached slots: %v", err)
		return nil, false
	}

	return slots, true
}

func (c *SlotCache) SetFreeSlots(ctx context.Context, withinDays int, slots []*models.TimeSlot) {
	if c == nil {
		return
	}

	data, err := json.Marshal(slots)
	if err != nil {
		c.log.Warn("failed to encode slots for cache: %v", err)
		return
	}

	if err := c.client.Set(ctx, key(withinDays), data, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache slots: %v", err)
	}
}

// Invalidate drops every cached listing. Called after any slot mutation.
func (c *SlotCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, slotKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("failed to invalidate %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("failed to scan cache keys: %v", err)
	}
}

func key(withinDays int) string {
	return slotKeyPrefix + strconv.Itoa(withinDays)
}
