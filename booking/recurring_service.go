package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jmorel/room-booking-backend/identity"
	"github.com/jmorel/room-booking-backend/notify"
)

// RecurringRequest describes a recurring series: the first occurrence's
// concrete start/end instants plus the repetition pattern. Every occurrence
// reuses the first occurrence's time of day and duration on its own date.
type RecurringRequest struct {
	RoomID         string           `json:"roomId"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	StartTime      time.Time        `json:"startTime"`
	EndTime        time.Time        `json:"endTime"`
	Pattern        RecurringPattern `json:"pattern"`
	Attendees      []string         `json:"attendees"`
	Equipment      []string         `json:"equipment"`
	SpecialRequest string           `json:"specialRequest"`
	ExcludedDates  []time.Time      `json:"excludedDates"`
}

type Conflict struct {
	Date      time.Time `json:"date"`
	BookingID string    `json:"bookingId,omitempty"`
}

// RecurringResult is the best-effort outcome of committing a series: which
// occurrences were created and which dates were lost to conflicts. Partial
// success is the normal case, not an error.
type RecurringResult struct {
	CreatedIDs []string   `json:"createdIds"`
	Conflicts  []Conflict `json:"conflicts"`
}

// PreviewRecurring expands the pattern and probes availability for every
// candidate date so the user can review and exclude occurrences before
// committing. Nothing is written.
func (s *Service) PreviewRecurring(ctx context.Context, request RecurringRequest) ([]RecurringInstance, error) {
	instances, err := s.expandAndProbe(ctx, request)

	if err != nil {
		return nil, err
	}

	return ApplyExclusions(instances, request.ExcludedDates), nil
}

// CreateRecurringBookings commits a recurring series. It stores the pattern,
// re-probes every candidate date, applies exclusions, and inserts one
// booking per committable occurrence. The batch is best-effort: an
// occurrence that fails or turns out to be taken between probe and commit is
// recorded as a conflict and does not roll back the rest. Zero created
// bookings is reported as ErrNoBookingsCreated alongside the collected
// conflicts.
func (s *Service) CreateRecurringBookings(ctx context.Context, request RecurringRequest, user identity.User) (RecurringResult, error) {
	result := RecurringResult{CreatedIDs: []string{}, Conflicts: []Conflict{}}

	instances, err := s.expandAndProbe(ctx, request)

	if err != nil {
		return result, err
	}

	instances = ApplyExclusions(instances, request.ExcludedDates)

	pattern, err := s.repo.InsertRecurringPattern(ctx, request.Pattern)

	if err != nil {
		return result, err
	}

	duration := request.EndTime.Sub(request.StartTime)

	for _, instance := range instances {
		if instance.Excluded {
			continue
		}

		if !instance.Available {
			result.Conflicts = append(result.Conflicts, Conflict{Date: instance.Date, BookingID: instance.ConflictID})
			continue
		}

		start := combineDateTime(instance.Date, request.StartTime)

		booking := Booking{
			RoomID:             request.RoomID,
			UserID:             user.ID,
			Username:           user.Username,
			Title:              request.Title,
			Description:        request.Description,
			StartTime:          start,
			EndTime:            start.Add(duration),
			RecurringPatternID: pattern.ID,
			Attendees:          request.Attendees,
			Equipment:          request.Equipment,
			SpecialRequest:     request.SpecialRequest,
		}

		inserted, err := s.repo.InsertBooking(ctx, booking)

		if errors.Is(err, ErrTimeSlotConflict) {
			// Lost the race between probe and commit; the constraint wins.
			result.Conflicts = append(result.Conflicts, Conflict{Date: instance.Date})
			continue
		}

		if err != nil {
			slog.Warn("failed to commit recurring occurrence", "date", instance.Date, "err", err)
			result.Conflicts = append(result.Conflicts, Conflict{Date: instance.Date})
			continue
		}

		result.CreatedIDs = append(result.CreatedIDs, inserted.ID)
	}

	if len(result.CreatedIDs) == 0 {
		return result, ErrNoBookingsCreated
	}

	s.sendRecurringNotification(ctx, request, user, result)

	return result, nil
}

func (s *Service) expandAndProbe(ctx context.Context, request RecurringRequest) ([]RecurringInstance, error) {
	if err := validateRecurringRequest(request); err != nil {
		return nil, err
	}

	dates, err := ExpandPattern(request.StartTime, request.Pattern)

	if err != nil {
		return nil, err
	}

	duration := request.EndTime.Sub(request.StartTime)

	return s.probeInstances(ctx, request.RoomID, dates, request.StartTime, duration), nil
}

// probeInstances checks every candidate date against the availability
// predicate. Probes run concurrently and each one writes only its own slot,
// so results line up with candidate dates no matter the response order. A
// failed probe marks just that date as unknown; the remaining dates are
// still probed.
func (s *Service) probeInstances(ctx context.Context, roomID string, dates []time.Time, startClock time.Time, duration time.Duration) []RecurringInstance {
	instances := make([]RecurringInstance, len(dates))

	var wg sync.WaitGroup

	for i, date := range dates {
		instances[i] = RecurringInstance{Date: date}

		wg.Add(1)

		go func(i int, date time.Time) {
			defer wg.Done()

			start := combineDateTime(date, startClock)
			end := start.Add(duration)

			available, conflictID, err := s.repo.IsRoomAvailable(ctx, roomID, start, end, "")

			if err != nil {
				slog.Warn("availability probe failed", "date", date, "err", err)
				instances[i].Unknown = true
				return
			}

			instances[i].Available = available
			instances[i].ConflictID = conflictID
		}(i, date)
	}

	wg.Wait()

	return instances
}

func validateRecurringRequest(request RecurringRequest) error {
	if err := validateBooking(Booking{
		RoomID:    request.RoomID,
		Title:     request.Title,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
	}); err != nil {
		return err
	}

	return request.Pattern.Validate()
}

func (s *Service) sendRecurringNotification(ctx context.Context, request RecurringRequest, user identity.User, result RecurringResult) {
	attempted := len(result.CreatedIDs) + len(result.Conflicts)

	message := notify.Message{
		Title: "Recurring booking created",
		Body:  fmt.Sprintf("%d of %d occurrences booked", len(result.CreatedIDs), attempted),
		Fields: []notify.Field{
			{
				Name:  "Organizer",
				Value: user.Username,
			},
			{
				Name:  "Title",
				Value: request.Title,
			},
			{
				Name:  "Frequency",
				Value: request.Pattern.Frequency + " (every " + strconv.Itoa(request.Pattern.Interval) + ")",
			},
		},
	}

	if err := s.notifier.Send(ctx, message); err != nil {
		slog.Warn("failed to send recurring booking notification", "err", err)
	}
}
