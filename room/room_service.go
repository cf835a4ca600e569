package room

import (
	"context"
	"fmt"
	"strings"
)

type RoomRepository interface {
	GetRooms(ctx context.Context, activeOnly bool) ([]Room, error)
	GetRoomByID(ctx context.Context, id string) (Room, error)
	InsertRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	SetRoomActive(ctx context.Context, id string, active bool) error
	GetAmenities(ctx context.Context) ([]string, error)
}

type Service struct {
	repo RoomRepository
}

func NewService(repo RoomRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListRooms(ctx context.Context, activeOnly bool) ([]Room, error) {
	return s.repo.GetRooms(ctx, activeOnly)
}

func (s *Service) FindRoomByID(ctx context.Context, id string) (Room, error) {
	return s.repo.GetRoomByID(ctx, id)
}

func (s *Service) CreateRoom(ctx context.Context, room Room) (Room, error) {
	if err := validateRoom(room); err != nil {
		return Room{}, err
	}

	return s.repo.InsertRoom(ctx, room)
}

func (s *Service) ModifyRoom(ctx context.Context, room Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}

	return s.repo.UpdateRoom(ctx, room)
}

// DeactivateRoom hides the room from booking without touching its history.
// Rooms are never deleted.
func (s *Service) DeactivateRoom(ctx context.Context, id string) error {
	return s.repo.SetRoomActive(ctx, id, false)
}

func (s *Service) ReactivateRoom(ctx context.Context, id string) error {
	return s.repo.SetRoomActive(ctx, id, true)
}

func (s *Service) ListAmenities(ctx context.Context) ([]string, error) {
	return s.repo.GetAmenities(ctx)
}

func validateRoom(room Room) error {
	if len(strings.TrimSpace(room.Name)) == 0 {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}

	if room.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidRoom)
	}

	return nil
}
