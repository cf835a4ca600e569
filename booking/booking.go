package booking

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

type Booking struct {
	ID                 string    `json:"id"`
	RoomID             string    `json:"roomId"`
	UserID             string    `json:"userId"`
	Username           string    `json:"username"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	Status             string    `json:"status"` // confirmed, cancelled, completed
	RecurringPatternID string    `json:"recurringPatternId,omitempty"`
	Attendees          []string  `json:"attendees"`
	Equipment          []string  `json:"equipment"`
	SpecialRequest     string    `json:"specialRequest"`
}

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// RecurringPattern describes how a series of bookings repeats. Weekday
// numbers run Monday=1 through Saturday=6 with Sunday=7. Exactly one of
// EndDate or MaxOccurrences must be set.
type RecurringPattern struct {
	ID             string     `json:"id"`
	Frequency      string     `json:"frequency"` // daily, weekly, monthly
	Interval       int        `json:"interval"`
	DaysOfWeek     []int      `json:"daysOfWeek,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	MaxOccurrences *int       `json:"maxOccurrences,omitempty"`
}

// RecurringInstance is one candidate occurrence during the booking-creation
// flow. It is never persisted; it only carries the probe result and the
// user's exclusion choice up to commit time.
type RecurringInstance struct {
	Date       time.Time `json:"date"`
	Available  bool      `json:"available"`
	ConflictID string    `json:"conflictId,omitempty"`
	Unknown    bool      `json:"unknown,omitempty"`
	Excluded   bool      `json:"excluded"`
}
