package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/courtside/bookingd/internal/models"
)

// MemoryStore implements every store interface behind a single mutex, so each
// method is the same atomic unit the postgres stores get from the database.
// It backs unit tests; nothing in production wiring uses it.
type MemoryStore struct {
	mu sync.Mutex

	users      map[int64]*models.User
	nextUserID int64

	slots      map[int64]*models.TimeSlot
	nextSlotID int64

	transactions []*models.Transaction
	nextTxID     int64

	resetTokens map[string]*models.PasswordResetToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[int64]*models.User),
		slots:       make(map[int64]*models.TimeSlot),
		resetTokens: make(map[string]*models.PasswordResetToken),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, req *models.CreateUserRequest, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	s.nextUserID++
	now := time.Now()
	user := &models.User{
		ID:           s.nextUserID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Balance:      req.Balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user

	return copyUser(user), nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	for id, u := range s.users {
		if id != userID && strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = email
	user.Phone = req.Phone
	user.UpdatedAt = time.Now()

	return copyUser(user), nil
}

func (s *MemoryStore) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return false, nil
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSlotID++
	slot := &models.TimeSlot{
		ID:        s.nextSlotID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	s.slots[slot.ID] = slot

	return copySlot(slot), nil
}

func (s *MemoryStore) DeleteSlot(ctx context.Context, slotID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[slotID]; !ok {
		return false, nil
	}
	delete(s.slots, slotID)
	return true, nil
}

func (s *MemoryStore) GetSlot(ctx context.Context, slotID int64) (*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	return copySlot(slot), nil
}

func (s *MemoryStore) BookSlot(ctx context.Context, slotID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || slot.IsBooked {
		return false, nil
	}

	slot.IsBooked = true
	owner := userID
	slot.BookedBy = &owner
	return true, nil
}

func (s *MemoryStore) UnbookSlot(ctx context.Context, slotID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok || !slot.IsBooked || slot.BookedBy == nil || *slot.BookedBy != userID {
		return false, nil
	}

	slot.IsBooked = false
	slot.BookedBy = nil
	return true, nil
}

func (s *MemoryStore) ListFreeSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*models.TimeSlot
	for _, slot := range s.slots {
		if !slot.IsBooked && dateInWindow(slot.Date, withinDays) {
			slots = append(slots, copySlot(slot))
		}
	}
	sortSlots(slots)

	return slots, nil
}

func (s *MemoryStore) ListSlotsByUser(ctx context.Context, userID int64) ([]*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*models.TimeSlot
	for _, slot := range s.slots {
		if slot.IsBooked && slot.BookedBy != nil && *slot.BookedBy == userID {
			slots = append(slots, copySlot(slot))
		}
	}
	sortSlots(slots)

	return slots, nil
}

func (s *MemoryStore) ListSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []*models.TimeSlot
	for _, slot := range s.slots {
		if dateInWindow(slot.Date, withinDays) {
			slots = append(slots, copySlot(slot))
		}
	}
	sortSlots(slots)

	return slots, nil
}

func (s *MemoryStore) ApplyTransaction(ctx context.Context, entry *models.Transaction) (*models.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[entry.UserID]
	if !ok {
		return nil, false, nil
	}

	user.Balance += entry.Amount
	user.UpdatedAt = time.Now()

	s.nextTxID++
	saved := &models.Transaction{
		ID:          s.nextTxID,
		UserID:      entry.UserID,
		Amount:      entry.Amount,
		Type:        entry.Type,
		Description: entry.Description,
		CreatedAt:   time.Now(),
	}
	s.transactions = append(s.transactions, saved)

	out := *saved
	return &out, true, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*models.Transaction, 0, len(s.transactions))
	for i := len(s.transactions) - 1; i >= 0; i-- {
		entry := *s.transactions[i]
		if user, ok := s.users[entry.UserID]; ok {
			entry.UserName = strings.TrimSpace(user.FirstName + " " + user.LastName)
			entry.UserEmail = user.Email
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

func (s *MemoryStore) ListTransactionsByUser(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []*models.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			entry := *s.transactions[i]
			entries = append(entries, &entry)
		}
	}

	return entries, nil
}

func (s *MemoryStore) ReplaceResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, existing := range s.resetTokens {
		if existing.UserID == token.UserID {
			delete(s.resetTokens, value)
		}
	}

	stored := *token
	s.resetTokens[token.Token] = &stored
	return nil
}

func (s *MemoryStore) RedeemResetToken(ctx context.Context, token, newPasswordHash string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.resetTokens[token]
	if !ok || stored.Used || time.Now().After(stored.ExpiresAt) {
		return 0, false, nil
	}

	user, ok := s.users[stored.UserID]
	if !ok {
		return 0, false, nil
	}

	stored.Used = true
	user.PasswordHash = newPasswordHash
	user.UpdatedAt = time.Now()

	return stored.UserID, true, nil
}

func (s *MemoryStore) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	now := time.Now()
	for value, token := range s.resetTokens {
		if token.Used || now.After(token.ExpiresAt) {
			delete(s.resetTokens, value)
			purged++
		}
	}

	return purged, nil
}

func copyUser(u *models.User) *models.User {
	out := *u
	return &out
}

func copySlot(s *models.TimeSlot) *models.TimeSlot {
	out := *s
	if s.BookedBy != nil {
		owner := *s.BookedBy
		out.BookedBy = &owner
	}
	return &out
}

func sortSlots(slots []*models.TimeSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
}

func dateInWindow(date string, withinDays int) bool {
	today := time.Now().Format("2006-01-02")
	limit := time.Now().AddDate(0, 0, withinDays).Format("2006-01-02")
	return date >= today && date < limit
}
