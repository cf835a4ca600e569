package booking

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jmorel/room-booking-backend/identity"
	"github.com/jmorel/room-booking-backend/notify"
)

type BookingRepository interface {
	GetBookingByID(ctx context.Context, id string) (Booking, error)
	GetBookingsByUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error)
	GetBookingsByRoom(ctx context.Context, roomID string, from, to time.Time) ([]Booking, error)
	InsertBooking(ctx context.Context, booking Booking) (Booking, error)
	UpdateBooking(ctx context.Context, booking Booking) error
	SetBookingStatus(ctx context.Context, id string, status string) error
	DeleteBooking(ctx context.Context, id string) error
	IsRoomAvailable(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, string, error)
	InsertRecurringPattern(ctx context.Context, pattern RecurringPattern) (RecurringPattern, error)
	CompletePastBookings(ctx context.Context, now time.Time) (int64, error)
	GetBookingCountPerRoom(ctx context.Context) ([]RoomBookingCount, error)
	GetBookingCountPerRoomInPeriod(ctx context.Context, start, end time.Time) ([]RoomBookingCount, error)
	GetBookingCountPerWeekDay(ctx context.Context) ([]WeekDayBookingCount, error)
}

type Service struct {
	repo     BookingRepository
	notifier notify.Notifier
}

func NewService(repo BookingRepository, notifier notify.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) FindBookingByID(ctx context.Context, id string) (Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *Service) FindBookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error) {
	return s.repo.GetBookingsByUser(ctx, userID, from, to)
}

func (s *Service) FindBookingsForRoom(ctx context.Context, roomID string, from, to time.Time) ([]Booking, error) {
	return s.repo.GetBookingsByRoom(ctx, roomID, from, to)
}

// CreateBooking validates and inserts a single non-recurring booking. The
// overlap constraint on the booking table is the final authority on
// availability, so a conflict can surface here even if the caller probed
// first.
func (s *Service) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	if err := validateBooking(booking); err != nil {
		return Booking{}, err
	}

	inserted, err := s.repo.InsertBooking(ctx, booking)

	if err == nil {
		s.sendNotification(ctx, inserted, "Booking confirmed")
	}

	return inserted, err
}

// ModifyBooking replaces the editable fields of a confirmed booking. Edits
// are a fresh update operation, not a replay of the creation flow.
func (s *Service) ModifyBooking(ctx context.Context, updated Booking, user identity.User) error {
	booking, err := s.repo.GetBookingByID(ctx, updated.ID)

	if err != nil {
		return err
	}

	if booking.Status != StatusConfirmed {
		return ErrInvalidBookingState
	}

	if !checkUserAllowed(booking, user) {
		return ErrNotAllowed
	}

	booking.Title = updated.Title
	booking.Description = updated.Description
	booking.StartTime = updated.StartTime
	booking.EndTime = updated.EndTime
	booking.Attendees = updated.Attendees
	booking.Equipment = updated.Equipment
	booking.SpecialRequest = updated.SpecialRequest

	if err := validateBooking(booking); err != nil {
		return err
	}

	err = s.repo.UpdateBooking(ctx, booking)

	if err == nil {
		s.sendNotification(ctx, booking, "Booking updated")
	}

	return err
}

func (s *Service) CancelBooking(ctx context.Context, id string, user identity.User) error {
	booking, err := s.repo.GetBookingByID(ctx, id)

	if err != nil {
		return err
	}

	if booking.Status != StatusConfirmed {
		return ErrInvalidBookingState
	}

	if !user.Admin && !checkUserAllowed(booking, user) {
		return ErrNotAllowed
	}

	err = s.repo.SetBookingStatus(ctx, id, StatusCancelled)

	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.sendNotification(ctx, booking, "Booking cancelled")

	return nil
}

func (s *Service) CompleteBooking(ctx context.Context, id string) error {
	booking, err := s.repo.GetBookingByID(ctx, id)

	if err != nil {
		return err
	}

	if booking.Status != StatusConfirmed {
		return ErrInvalidBookingState
	}

	return s.repo.SetBookingStatus(ctx, id, StatusCompleted)
}

// DeleteBooking removes the record entirely. Normal flows cancel instead;
// this exists for administrators cleaning up bad data.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	return s.repo.DeleteBooking(ctx, id)
}

// CompletePastBookings is invoked from the periodic sweep.
func (s *Service) CompletePastBookings(ctx context.Context) (int64, error) {
	return s.repo.CompletePastBookings(ctx, time.Now())
}

type AvailabilityResult struct {
	Available  bool   `json:"available"`
	ConflictID string `json:"conflictId,omitempty"`
}

// CheckAvailability answers "is this room free in this window". The edit
// flow passes the booking being edited so it does not conflict with itself.
func (s *Service) CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (AvailabilityResult, error) {
	if !end.After(start) {
		return AvailabilityResult{}, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidBooking)
	}

	available, conflictID, err := s.repo.IsRoomAvailable(ctx, roomID, start, end, excludeBookingID)

	if err != nil {
		return AvailabilityResult{}, err
	}

	return AvailabilityResult{Available: available, ConflictID: conflictID}, nil
}

func (s *Service) GetBookingCountPerRoom(ctx context.Context) ([]RoomBookingCount, error) {
	return s.repo.GetBookingCountPerRoom(ctx)
}

func (s *Service) GetBookingCountPerRoomInPeriod(ctx context.Context, start, end time.Time) ([]RoomBookingCount, error) {
	return s.repo.GetBookingCountPerRoomInPeriod(ctx, start, end)
}

func (s *Service) GetBookingCountPerWeekDay(ctx context.Context) ([]WeekDayBookingCount, error) {
	return s.repo.GetBookingCountPerWeekDay(ctx)
}

// validateBooking runs before any repository call so malformed requests
// never reach the network.
func validateBooking(booking Booking) error {
	if len(strings.TrimSpace(booking.RoomID)) == 0 {
		return fmt.Errorf("%w: roomId is required", ErrInvalidBooking)
	}

	if len(strings.TrimSpace(booking.Title)) == 0 {
		return fmt.Errorf("%w: title is required", ErrInvalidBooking)
	}

	if !booking.EndTime.After(booking.StartTime) {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidBooking)
	}

	return nil
}

func checkUserAllowed(booking Booking, user identity.User) bool {
	if booking.UserID != user.ID && !slices.Contains(booking.Attendees, user.Username) {
		return false
	}

	return true
}

func (s *Service) sendNotification(ctx context.Context, booking Booking, title string) {
	message := notify.Message{
		Title: title,
		Fields: []notify.Field{
			{
				Name:  "Organizer",
				Value: booking.Username,
			},
			{
				Name:  "Title",
				Value: booking.Title,
			},
			{
				Name:  "Starts",
				Value: booking.StartTime.Format(time.DateTime),
			},
			{
				Name:  "Ends",
				Value: booking.EndTime.Format(time.DateTime),
			},
			{
				Name:  "Attendees",
				Value: strings.Join(booking.Attendees, ", "),
			},
		},
	}

	if err := s.notifier.Send(ctx, message); err != nil {
		slog.Warn("failed to send booking notification", "bookingId", booking.ID, "err", err)
	}
}
