package room

import "errors"

var ErrRoomNotFound = errors.New("room not found")

var ErrInvalidRoom = errors.New("invalid room")
