package reschedule_booking

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	StartAt string `json:"start_at"` // RFC3339
}
