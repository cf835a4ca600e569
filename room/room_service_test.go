package room_test

import (
	"context"
	"errors"
	"testing"

	rm "github.com/jmorel/room-booking-backend/room"
	rm_mocks "github.com/jmorel/room-booking-backend/room/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var boardRoom = rm.Room{
	ID:         "room-1",
	Name:       "Board room",
	Capacity:   12,
	Location:   "HQ",
	Floor:      3,
	RoomNumber: "3.14",
	Active:     true,
	Amenities:  []string{"projector", "whiteboard"},
}

func newRoomDeps(t *testing.T) (*gomock.Controller, *rm_mocks.MockRoomRepository, *rm.Service, context.Context) {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := rm_mocks.NewMockRoomRepository(ctrl)
	svc := rm.NewService(repo)

	return ctrl, repo, svc, context.Background()
}

func TestListRooms(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().GetRooms(ctx, true).Return([]rm.Room{boardRoom}, nil).Times(1)

		rooms, err := svc.ListRooms(ctx, true)

		require.NoError(t, err)
		require.Len(t, rooms, 1)
		require.Equal(t, boardRoom, rooms[0])
	})

	t.Run("repo error", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().GetRooms(ctx, false).Return(nil, errors.New("repo error")).Times(1)

		rooms, err := svc.ListRooms(ctx, false)

		require.Error(t, err)
		require.Empty(t, rooms)
	})
}

func TestCreateRoom(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		request := boardRoom
		request.ID = ""

		repo.EXPECT().InsertRoom(ctx, request).Return(boardRoom, nil).Times(1)

		created, err := svc.CreateRoom(ctx, request)

		require.NoError(t, err)
		require.Equal(t, boardRoom, created)
	})

	t.Run("missing name", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().InsertRoom(gomock.Any(), gomock.Any()).Times(0)

		request := boardRoom
		request.Name = ""

		_, err := svc.CreateRoom(ctx, request)

		require.ErrorIs(t, err, rm.ErrInvalidRoom)
	})

	t.Run("zero capacity", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().InsertRoom(gomock.Any(), gomock.Any()).Times(0)

		request := boardRoom
		request.Capacity = 0

		_, err := svc.CreateRoom(ctx, request)

		require.ErrorIs(t, err, rm.ErrInvalidRoom)
	})
}

func TestModifyRoom(t *testing.T) {

	t.Run("success", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().UpdateRoom(ctx, boardRoom).Return(nil).Times(1)

		require.NoError(t, svc.ModifyRoom(ctx, boardRoom))
	})

	t.Run("not found", func(t *testing.T) {
		ctrl, repo, svc, ctx := newRoomDeps(t)
		defer ctrl.Finish()

		repo.EXPECT().UpdateRoom(ctx, boardRoom).Return(rm.ErrRoomNotFound).Times(1)

		require.ErrorIs(t, svc.ModifyRoom(ctx, boardRoom), rm.ErrRoomNotFound)
	})
}

func TestRoomActivation(t *testing.T) {
	ctrl, repo, svc, ctx := newRoomDeps(t)
	defer ctrl.Finish()

	repo.EXPECT().SetRoomActive(ctx, "room-1", false).Return(nil).Times(1)
	repo.EXPECT().SetRoomActive(ctx, "room-1", true).Return(nil).Times(1)

	require.NoError(t, svc.DeactivateRoom(ctx, "room-1"))
	require.NoError(t, svc.ReactivateRoom(ctx, "room-1"))
}

func TestListAmenities(t *testing.T) {
	ctrl, repo, svc, ctx := newRoomDeps(t)
	defer ctrl.Finish()

	repo.EXPECT().GetAmenities(ctx).Return([]string{"projector", "whiteboard"}, nil).Times(1)

	amenities, err := svc.ListAmenities(ctx)

	require.NoError(t, err)
	require.Equal(t, []string{"projector", "whiteboard"}, amenities)
}
