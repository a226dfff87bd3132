package domain

// Slot granularity
const (
	DefaultStepMinutes = 15
	MinStepMinutes     = 5
	MaxStepMinutes     = 60
)

// Business validation constants
const (
	MaxNotesLength         = 500
	MaxClientNameLength    = 255
	MaxClientContactLength = 255
)

// DefaultTimezone is used when the catalog does not specify one
const DefaultTimezone = "Europe/Moscow"

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses statuses that occupy staff time and take part in overlap checks
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusPaid,
}
