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

type SlotHandler struct {
	booking *service.BookingService
	log     *logger.Logger
}

func NewSlotHandler(booking *service.BookingService) *SlotHandler {
	return &SlotHandler{
		booking: booking,
		log:     logger.New("slot-handler"),
	}
}

type CreateSlotRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BookSlotRequest struct {
	SlotID int64 `json:"slot_id"`
}

// Slots handles POST (create) and DELETE /api/time-slots/{id}.
func (h *SlotHandler) Slots(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req CreateSlotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		slot, err := h.booking.Create(r.Context(), caller, &models.CreateSlotRequest{
			Date:      req.Date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, slot)

	case http.MethodDelete:
		idStr := strings.TrimPrefix(r.URL.Path, "/api/time-slots/")
		slotID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			http.Error(w, "Invalid slot id", http.StatusBadRequest)
			return
		}

		if err := h.booking.Delete(r.Context(), caller, slotID); err != nil {
			writeError(w, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SlotHandler) ListFree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slots, err := h.booking.ListFree(r.Context(), daysParam(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	slots, err := h.booking.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	slots, err := h.booking.ListAll(r.Context(), caller, daysParam(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	slot, err := h.booking.Book(r.Context(), caller, req.SlotID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (h *SlotHandler) Unbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller, ok := middleware.Caller(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.booking.Unbook(r.Context(), caller, req.SlotID); err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot released"})
}

func daysParam(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		return 0
	}
	return days
}
