package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	bk "github.com/jmorel/room-booking-backend/booking"
	bk_mocks "github.com/jmorel/room-booking-backend/booking/mocks"
	"github.com/jmorel/room-booking-backend/identity"
	nt_mocks "github.com/jmorel/room-booking-backend/notify/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var owner = identity.User{ID: "user1ID", Username: "user1"}

var confirmedBooking = bk.Booking{
	ID:        "b-1",
	RoomID:    "room-1",
	UserID:    "user1ID",
	Username:  "user1",
	Title:     "Sprint planning",
	StartTime: time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
	EndTime:   time.Date(2024, time.June, 3, 11, 0, 0, 0, time.UTC),
	Status:    bk.StatusConfirmed,
	Attendees: []string{"user2"},
}

type testDeps struct {
	repo     *bk_mocks.MockBookingRepository
	notifier *nt_mocks.MockNotifier
	service  *bk.Service
	ctx      context.Context
}

func newTestDeps(t *testing.T) (*gomock.Controller, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := bk_mocks.NewMockBookingRepository(ctrl)
	notifier := nt_mocks.NewMockNotifier(ctrl)
	svc := bk.NewService(repo, notifier)

	return ctrl, testDeps{
		repo: repo, notifier: notifier, service: svc, ctx: context.Background(),
	}
}

func TestCreateBooking(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		request := confirmedBooking
		request.ID = ""

		inserted := confirmedBooking
		deps.repo.EXPECT().InsertBooking(deps.ctx, request).Return(inserted, nil).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		got, err := deps.service.CreateBooking(deps.ctx, request)

		require.NoError(t, err)
		require.Equal(t, inserted, got)
	})

	t.Run("end before start fails before any repository call", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		request := confirmedBooking
		request.StartTime = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
		request.EndTime = time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)

		deps.repo.EXPECT().InsertBooking(gomock.Any(), gomock.Any()).Times(0)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.CreateBooking(deps.ctx, request)

		require.ErrorIs(t, err, bk.ErrInvalidBooking)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		request := confirmedBooking
		request.Title = "  "

		deps.repo.EXPECT().InsertBooking(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.CreateBooking(deps.ctx, request)

		require.ErrorIs(t, err, bk.ErrInvalidBooking)
	})

	t.Run("commit-time conflict is passed through", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		request := confirmedBooking
		deps.repo.EXPECT().InsertBooking(deps.ctx, request).Return(bk.Booking{}, bk.ErrTimeSlotConflict).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.CreateBooking(deps.ctx, request)

		require.ErrorIs(t, err, bk.ErrTimeSlotConflict)
	})
}

func TestModifyBooking(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		updated := confirmedBooking
		updated.Title = "Sprint planning (moved)"
		updated.StartTime = confirmedBooking.StartTime.Add(time.Hour)
		updated.EndTime = confirmedBooking.EndTime.Add(time.Hour)

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().UpdateBooking(deps.ctx, updated).Return(nil).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		err := deps.service.ModifyBooking(deps.ctx, updated, owner)

		require.NoError(t, err)
	})

	t.Run("cancelled booking cannot be modified", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		cancelled := confirmedBooking
		cancelled.Status = bk.StatusCancelled

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(cancelled, nil).Times(1)
		deps.repo.EXPECT().UpdateBooking(gomock.Any(), gomock.Any()).Times(0)

		err := deps.service.ModifyBooking(deps.ctx, confirmedBooking, owner)

		require.ErrorIs(t, err, bk.ErrInvalidBookingState)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().UpdateBooking(gomock.Any(), gomock.Any()).Times(0)

		stranger := identity.User{ID: "someone-else", Username: "stranger"}
		err := deps.service.ModifyBooking(deps.ctx, confirmedBooking, stranger)

		require.ErrorIs(t, err, bk.ErrNotAllowed)
	})

	t.Run("attendee may modify", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().UpdateBooking(deps.ctx, gomock.Any()).Return(nil).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		attendee := identity.User{ID: "user2ID", Username: "user2"}
		err := deps.service.ModifyBooking(deps.ctx, confirmedBooking, attendee)

		require.NoError(t, err)
	})
}

func TestCancelBooking(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().SetBookingStatus(deps.ctx, "b-1", bk.StatusCancelled).Return(nil).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		err := deps.service.CancelBooking(deps.ctx, "b-1", owner)

		require.NoError(t, err)
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		cancelled := confirmedBooking
		cancelled.Status = bk.StatusCancelled

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(cancelled, nil).Times(1)
		deps.repo.EXPECT().SetBookingStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := deps.service.CancelBooking(deps.ctx, "b-1", owner)

		require.ErrorIs(t, err, bk.ErrInvalidBookingState)
	})

	t.Run("admin may cancel someone else's booking", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().SetBookingStatus(deps.ctx, "b-1", bk.StatusCancelled).Return(nil).Times(1)
		deps.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		admin := identity.User{ID: "adminID", Username: "admin", Admin: true}
		err := deps.service.CancelBooking(deps.ctx, "b-1", admin)

		require.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().SetBookingStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		stranger := identity.User{ID: "someone-else", Username: "stranger"}
		err := deps.service.CancelBooking(deps.ctx, "b-1", stranger)

		require.ErrorIs(t, err, bk.ErrNotAllowed)
	})
}

func TestCompleteBooking(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(confirmedBooking, nil).Times(1)
		deps.repo.EXPECT().SetBookingStatus(deps.ctx, "b-1", bk.StatusCompleted).Return(nil).Times(1)

		require.NoError(t, deps.service.CompleteBooking(deps.ctx, "b-1"))
	})

	t.Run("cancelled booking cannot complete", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		cancelled := confirmedBooking
		cancelled.Status = bk.StatusCancelled

		deps.repo.EXPECT().GetBookingByID(deps.ctx, "b-1").Return(cancelled, nil).Times(1)

		require.ErrorIs(t, deps.service.CompleteBooking(deps.ctx, "b-1"), bk.ErrInvalidBookingState)
	})
}

func TestCheckAvailability(t *testing.T) {
	start := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("free room", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().IsRoomAvailable(deps.ctx, "room-1", start, end, "").Return(true, "", nil).Times(1)

		result, err := deps.service.CheckAvailability(deps.ctx, "room-1", start, end, "")

		require.NoError(t, err)
		require.True(t, result.Available)
		require.Empty(t, result.ConflictID)
	})

	t.Run("conflicting booking id is reported", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().IsRoomAvailable(deps.ctx, "room-1", start, end, "b-9").Return(false, "b-7", nil).Times(1)

		result, err := deps.service.CheckAvailability(deps.ctx, "room-1", start, end, "b-9")

		require.NoError(t, err)
		require.False(t, result.Available)
		require.Equal(t, "b-7", result.ConflictID)
	})

	t.Run("inverted window fails before any repository call", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().IsRoomAvailable(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.CheckAvailability(deps.ctx, "room-1", end, start, "")

		require.ErrorIs(t, err, bk.ErrInvalidBooking)
	})
}

func TestCompletePastBookings(t *testing.T) {
	ctrl, deps := newTestDeps(t)
	defer ctrl.Finish()

	deps.repo.EXPECT().CompletePastBookings(deps.ctx, gomock.Any()).Return(int64(3), nil).Times(1)

	count, err := deps.service.CompletePastBookings(deps.ctx)

	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestFindBookings(t *testing.T) {
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	t.Run("by user", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingsByUser(deps.ctx, "user1ID", from, to).Return([]bk.Booking{confirmedBooking}, nil).Times(1)

		bookings, err := deps.service.FindBookingsForUser(deps.ctx, "user1ID", from, to)

		require.NoError(t, err)
		require.Len(t, bookings, 1)
	})

	t.Run("by room error", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.repo.EXPECT().GetBookingsByRoom(deps.ctx, "room-1", from, to).Return(nil, errors.New("repo error")).Times(1)

		bookings, err := deps.service.FindBookingsForRoom(deps.ctx, "room-1", from, to)

		require.Error(t, err)
		require.Empty(t, bookings)
	})
}
