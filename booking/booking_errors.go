package booking

import "errors"

var ErrBookingNotFound = errors.New("booking not found")

var ErrInvalidBookingState = errors.New("invalid booking state")

var ErrNotAllowed = errors.New("not allowed to perform this operation")

var ErrInvalidBooking = errors.New("invalid booking request")

var ErrInvalidPattern = errors.New("invalid recurring pattern")

var ErrTimeSlotConflict = errors.New("time slot conflicts with an existing booking")

var ErrNoBookingsCreated = errors.New("no bookings could be created")
