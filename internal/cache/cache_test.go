package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/courtside/bookingd/internal/models"
)

func TestGetFreeSlots_Hit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	owner := int64(7)
	cached := []*models.TimeSlot{
		{ID: 1, Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00"},
		{ID: 2, Date: "2026-09-01", StartTime: "10:00", EndTime: "11:00", IsBooked: true, BookedBy: &owner},
	}
	data, _ := json.Marshal(cached)

	mock.ExpectGet("slots:free:7").SetVal(string(data))

	c := NewSlotCache(rdb, time.Minute)
	slots, ok := c.GetFreeSlots(context.Background(), 7)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].ID != 1 || slots[1].BookedBy == nil || *slots[1].BookedBy != 7 {
		t.Errorf("decoded slots do not match cached payload: %+v", slots)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestGetFreeSlots_Miss(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	mock.ExpectGet("slots:free:7").RedisNil()

	c := NewSlotCache(rdb, time.Minute)
	if _, ok := c.GetFreeSlots(context.Background(), 7); ok {
		t.Error("expected cache miss")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestGetFreeSlots_CorruptPayload(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	mock.ExpectGet("slots:free:7").SetVal("not json")

	c := NewSlotCache(rdb, time.Minute)
	if _, ok := c.GetFreeSlots(context.Background(), 7); ok {
		t.Error("corrupt payload must read as a miss, not a hit")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestSetFreeSlots(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	slots := []*models.TimeSlot{
		{ID: 1, Date: "2026-09-01", StartTime: "09:00", EndTime: "10:00"},
	}
	data, _ := json.Marshal(slots)

	mock.ExpectSet("slots:free:7", data, time.Minute).SetVal("OK")

	c := NewSlotCache(rdb, time.Minute)
	c.SetFreeSlots(context.Background(), 7, slots)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestInvalidate_DropsEveryListing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	mock.ExpectScan(0, "slots:free:*", 0).SetVal([]string{"slots:free:7", "slots:free:14"}, 0)
	mock.ExpectDel("slots:free:7").SetVal(1)
	mock.ExpectDel("slots:free:14").SetVal(1)

	c := NewSlotCache(rdb, time.Minute)
	c.Invalidate(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *SlotCache

	if _, ok := c.GetFreeSlots(context.Background(), 7); ok {
		t.Error("nil cache must miss")
	}
	c.SetFreeSlots(context.Background(), 7, nil)
	c.Invalidate(context.Background())
}
