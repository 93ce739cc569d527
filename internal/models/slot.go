package models

// TimeSlot is a bookable interval owned by at most one user at a time.
// Date is "2006-01-02", StartTime and EndTime are "15:04".
type TimeSlot struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsBooked  bool   `json:"is_booked"`
	BookedBy  *int64 `json:"booked_by"`
}

type CreateSlotRequest struct {
	Date      string
	StartTime string
	EndTime   string
}
