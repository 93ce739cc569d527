package service

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/cache"
	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/storage"
	"github.com/courtside/bookingd/internal/validation"
)

const defaultListingDays = 7

// BookingService owns the FREE -> BOOKED -> FREE lifecycle of time slots.
// All races are settled by the store's conditional updates; the service only
// classifies outcomes and keeps the listing cache fresh.
type BookingService struct {
	slots     storage.SlotStore
	slotCache *cache.SlotCache
	log       *logger.Logger
}

func NewBookingService(slots storage.SlotStore, slotCache *cache.SlotCache) *BookingService {
	return &BookingService{
		slots:     slots,
		slotCache: slotCache,
		log:       logger.New("booking-service"),
	}
}

// Book attempts the conditional FREE -> BOOKED transition. When several
// callers race on one slot, exactly one gets the slot back and the rest get
// ErrConflict. Losing is a normal outcome, not a fault; the caller picks
// another slot.
func (s *BookingService) Book(ctx context.Context, caller Identity, slotID int64) (*models.TimeSlot, error) {
	won, err := s.slots.BookSlot(ctx, slotID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to book slot: %w", err)
	}

	if !won {
		slot, err := s.slots.GetSlot(ctx, slotID)
		if err != nil {
			return nil, fmt.Errorf("failed to get slot: %w", err)
		}
		if slot == nil {
			return nil, fmt.Errorf("%w: slot %d", ErrNotFound, slotID)
		}
		return nil, fmt.Errorf("%w: slot %d is already booked", ErrConflict, slotID)
	}

	s.slotCache.Invalidate(ctx)
	s.log.Info("user %d booked slot %d", caller.UserID, slotID)

	slot, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	if slot == nil {
		// An admin deleted the slot between the transition and this read.
		return nil, fmt.Errorf("%w: slot %d", ErrNotFound, slotID)
	}
	return slot, nil
}

// Unbook releases a slot the caller owns. Releasing someone else's booking is
// a permission failure, not a conflict.
func (s *BookingService) Unbook(ctx context.Context, caller Identity, slotID int64) error {
	released, err := s.slots.UnbookSlot(ctx, slotID, caller.UserID)
	if err != nil {
		return fmt.Errorf("failed to unbook slot: %w", err)
	}

	if !released {
		slot, err := s.slots.GetSlot(ctx, slotID)
		if err != nil {
			return fmt.Errorf("failed to get slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: slot %d", ErrNotFound, slotID)
		}
		if !slot.IsBooked {
			return fmt.Errorf("%w: slot %d is not booked", ErrConflict, slotID)
		}
		return fmt.Errorf("%w: slot %d is booked by another user", ErrForbidden, slotID)
	}

	s.slotCache.Invalidate(ctx)
	s.log.Info("user %d released slot %d", caller.UserID, slotID)
	return nil
}

func (s *BookingService) ListFree(ctx context.Context, withinDays int) ([]*models.TimeSlot, error) {
	if withinDays <= 0 {
		withinDays = defaultListingDays
	}

	if slots, ok := s.slotCache.GetFreeSlots(ctx, withinDays); ok {
		return slots, nil
	}

	slots, err := s.slots.ListFreeSlots(ctx, withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list free slots: %w", err)
	}

	s.slotCache.SetFreeSlots(ctx, withinDays, slots)
	return slots, nil
}

func (s *BookingService) ListMine(ctx context.Context, caller Identity) ([]*models.TimeSlot, error) {
	slots, err := s.slots.ListSlotsByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	return slots, nil
}

func (s *BookingService) ListAll(ctx context.Context, caller Identity, withinDays int) ([]*models.TimeSlot, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if withinDays <= 0 {
		withinDays = defaultListingDays
	}

	slots, err := s.slots.ListSlots(ctx, withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (s *BookingService) Create(ctx context.Context, caller Identity, req *models.CreateSlotRequest) (*models.TimeSlot, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validation.SlotTimes(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	slot, err := s.slots.CreateSlot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	s.slotCache.Invalidate(ctx)
	return slot, nil
}

// Delete removes a slot unconditionally. A booked slot is deletable; the
// booking disappears with it.
func (s *BookingService) Delete(ctx context.Context, caller Identity, slotID int64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	deleted, err := s.slots.DeleteSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: slot %d", ErrNotFound, slotID)
	}

	s.slotCache.Invalidate(ctx)
	return nil
}
