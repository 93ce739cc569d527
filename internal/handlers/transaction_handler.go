package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/middleware"
	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/service"
)

type TransactionHandler struct {
	ledger *service.LedgerService
	log    *logger.Logger
}

func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		log:    logger.New("transaction-handler"),
	}
}

type CreateTransactionRequest struct {
	UserID      int64                  `json:"user_id"`
	Type        models.TransactionType `json:"transaction_type"`
	Amount      float64                `json:"amount"`
	Description string                 `json:"description"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.ledger.Apply(r.Context(), caller, req.UserID, req.Type, req.Amount, req.Description)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *TransactionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.ledger.ListAll(r.Context(), caller)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// ListForUser handles GET /api/transactions/user/{id}.
func (h *TransactionHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/transactions/user/")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	entries, err := h.ledger.ListForUser(r.Context(), caller, userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
