package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/courtside/bookingd/internal/models"
)

func newStoreWithUser(t *testing.T) (*MemoryStore, *models.User) {
	t.Helper()
	store := NewMemoryStore()
	user, err := store.CreateUser(context.Background(), &models.CreateUserRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     "user@example.com",
		Role:      models.RoleUser,
	}, "hash")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return store, user
}

func TestCreateUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	store, _ := newStoreWithUser(t)

	_, err := store.CreateUser(context.Background(), &models.CreateUserRequest{
		Email: "USER@example.com",
		Role:  models.RoleUser,
	}, "hash")
	if err != ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	store, user := newStoreWithUser(t)

	found, err := store.GetUserByEmail(context.Background(), "User@Example.COM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Errorf("expected user %d, got %+v", user.ID, found)
	}
}

func TestBookSlot_ConditionalTransition(t *testing.T) {
	store := NewMemoryStore()
	slot, err := store.CreateSlot(context.Background(), &models.CreateSlotRequest{
		Date:      time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("failed to create slot: %v", err)
	}

	won, err := store.BookSlot(context.Background(), slot.ID, 7)
	if err != nil || !won {
		t.Fatalf("first booking should win, got won=%v err=%v", won, err)
	}

	won, err = store.BookSlot(context.Background(), slot.ID, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if won {
		t.Error("second booking of the same slot should lose")
	}

	// Wrong owner cannot release.
	released, err := store.UnbookSlot(context.Background(), slot.ID, 8)
	if err != nil || released {
		t.Errorf("foreign unbook should fail, got released=%v err=%v", released, err)
	}

	released, err = store.UnbookSlot(context.Background(), slot.ID, 7)
	if err != nil || !released {
		t.Errorf("owner unbook should succeed, got released=%v err=%v", released, err)
	}
}

func TestBookSlot_ConcurrentWinners(t *testing.T) {
	store := NewMemoryStore()
	slot, err := store.CreateSlot(context.Background(), &models.CreateSlotRequest{
		Date:      time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if err != nil {
		t.Fatalf("failed to create slot: %v", err)
	}

	const callers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins int

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			won, err := store.BookSlot(context.Background(), slot.ID, userID)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
}

func TestApplyTransaction_UnknownUser(t *testing.T) {
	store := NewMemoryStore()

	_, ok, err := store.ApplyTransaction(context.Background(), &models.Transaction{
		UserID: 999,
		Amount: 10,
		Type:   models.TransactionCredit,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("apply against a missing user should report false")
	}
}

func TestRedeemResetToken_Expired(t *testing.T) {
	store, user := newStoreWithUser(t)

	err := store.ReplaceResetToken(context.Background(), &models.PasswordResetToken{
		Token:     "expired-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("failed to store token: %v", err)
	}

	_, ok, err := store.RedeemResetToken(context.Background(), "expired-token", "newhash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expired token should not redeem")
	}
}

func TestReplaceResetToken_Supersedes(t *testing.T) {
	store, user := newStoreWithUser(t)

	for _, token := range []string{"first-token", "second-token"} {
		err := store.ReplaceResetToken(context.Background(), &models.PasswordResetToken{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(30 * time.Minute),
		})
		if err != nil {
			t.Fatalf("failed to store token: %v", err)
		}
	}

	if _, ok, _ := store.RedeemResetToken(context.Background(), "first-token", "newhash"); ok {
		t.Error("superseded token should not redeem")
	}
	if _, ok, _ := store.RedeemResetToken(context.Background(), "second-token", "newhash"); !ok {
		t.Error("current token should redeem")
	}
}
