package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct{ pool *pgxpool.Pool }

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bookingColumns = `id, "roomId", COALESCE("userId", ''), COALESCE(username, ''), title, description,
        "startTime", "endTime", status, COALESCE("recurringPatternId"::text, ''),
        COALESCE(attendees, '{}'), COALESCE(equipment, '{}'), "specialRequest"`

func scanBooking(row pgx.Row) (Booking, error) {
	var booking Booking
	err := row.Scan(
		&booking.ID,
		&booking.RoomID,
		&booking.UserID,
		&booking.Username,
		&booking.Title,
		&booking.Description,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.RecurringPatternID,
		&booking.Attendees,
		&booking.Equipment,
		&booking.SpecialRequest,
	)

	return booking, err
}

func (r *Repository) GetBookingByID(ctx context.Context, id string) (Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM "room-booking".booking WHERE id=$1;`

	booking, err := scanBooking(r.pool.QueryRow(ctx, sql, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrBookingNotFound
	}

	if err != nil {
		return Booking{}, fmt.Errorf("failed to fetch booking with id %v: %w", id, err)
	}

	return booking, nil
}

func (r *Repository) GetBookingsByUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error) {
	sql := `SELECT ` + bookingColumns + `
            FROM "room-booking".booking
            WHERE ("userId"=$1 OR $1 = ANY(attendees))
              AND "startTime" >= $2 AND "startTime" < $3
            ORDER BY "startTime";`

	rows, err := r.pool.Query(ctx, sql, userID, from, to)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings for user '%v': %w", userID, err)
	}

	defer rows.Close()

	return collectBookings(rows)
}

func (r *Repository) GetBookingsByRoom(ctx context.Context, roomID string, from, to time.Time) ([]Booking, error) {
	sql := `SELECT ` + bookingColumns + `
            FROM "room-booking".booking
            WHERE "roomId"=$1
              AND "startTime" >= $2 AND "startTime" < $3
            ORDER BY "startTime";`

	rows, err := r.pool.Query(ctx, sql, roomID, from, to)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings for room '%v': %w", roomID, err)
	}

	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	var bookings []Booking

	for rows.Next() {
		booking, err := scanBooking(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}

		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings rows: %w", err)
	}

	return bookings, nil
}

func (r *Repository) InsertBooking(ctx context.Context, booking Booking) (Booking, error) {
	sql := `
			INSERT INTO "room-booking".booking(
			"roomId", "userId", username, title, description, "startTime", "endTime", status, "recurringPatternId", attendees, equipment, "specialRequest")
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id;
		`

	var patternID any
	if booking.RecurringPatternID != "" {
		patternID = booking.RecurringPatternID
	}

	err := r.pool.QueryRow(ctx, sql,
		booking.RoomID,
		booking.UserID,
		booking.Username,
		booking.Title,
		booking.Description,
		booking.StartTime,
		booking.EndTime,
		StatusConfirmed,
		patternID,
		booking.Attendees,
		booking.Equipment,
		booking.SpecialRequest,
	).Scan(&booking.ID)

	if isExclusionViolation(err) {
		return Booking{}, ErrTimeSlotConflict
	}

	if err != nil {
		return Booking{}, fmt.Errorf("failed to insert booking: %w", err)
	}

	booking.Status = StatusConfirmed

	return booking, nil
}

func (r *Repository) UpdateBooking(ctx context.Context, booking Booking) error {
	sql := `
			UPDATE "room-booking".booking
			SET
				title=$1,
				description=$2,
				"startTime"=$3,
				"endTime"=$4,
				attendees=$5,
				equipment=$6,
				"specialRequest"=$7
			WHERE id=$8;
		`

	tag, err := r.pool.Exec(ctx, sql,
		booking.Title,
		booking.Description,
		booking.StartTime,
		booking.EndTime,
		booking.Attendees,
		booking.Equipment,
		booking.SpecialRequest,
		booking.ID,
	)

	if isExclusionViolation(err) {
		return ErrTimeSlotConflict
	}

	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) SetBookingStatus(ctx context.Context, id string, status string) error {
	sql := `
            UPDATE "room-booking".booking
            SET status=$1
            WHERE id=$2;
        `

	tag, err := r.pool.Exec(ctx, sql, status, id)

	if err != nil {
		return fmt.Errorf("failed to update booking '%v' status: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	sql := `DELETE FROM "room-booking".booking WHERE id=$1;`

	tag, err := r.pool.Exec(ctx, sql, id)

	if err != nil {
		return fmt.Errorf("failed to delete booking '%v': %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// IsRoomAvailable reports whether the room has no confirmed booking
// overlapping the window. excludeBookingID lets the edit flow ignore the
// booking being edited. The id of one conflicting booking is returned when
// the room is taken.
func (r *Repository) IsRoomAvailable(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, string, error) {
	sql := `
            SELECT id FROM "room-booking".booking
            WHERE "roomId"=$1
              AND status='confirmed'
              AND tstzrange("startTime", "endTime") && tstzrange($2, $3)
              AND ($4 = '' OR id::text <> $4)
            LIMIT 1;
        `

	var conflictID string
	err := r.pool.QueryRow(ctx, sql, roomID, start, end, excludeBookingID).Scan(&conflictID)

	if errors.Is(err, pgx.ErrNoRows) {
		return true, "", nil
	}

	if err != nil {
		return false, "", fmt.Errorf("failed to check availability for room '%v': %w", roomID, err)
	}

	return false, conflictID, nil
}

func (r *Repository) InsertRecurringPattern(ctx context.Context, pattern RecurringPattern) (RecurringPattern, error) {
	sql := `
			INSERT INTO "room-booking".recurring_pattern(frequency, "interval", "daysOfWeek", "endDate", "maxOccurrences")
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;
		`

	err := r.pool.QueryRow(ctx, sql,
		pattern.Frequency,
		pattern.Interval,
		pattern.DaysOfWeek,
		pattern.EndDate,
		pattern.MaxOccurrences,
	).Scan(&pattern.ID)

	if err != nil {
		return RecurringPattern{}, fmt.Errorf("failed to insert recurring pattern: %w", err)
	}

	return pattern, nil
}

// CompletePastBookings flips confirmed bookings whose end time has passed to
// completed and returns how many rows changed.
func (r *Repository) CompletePastBookings(ctx context.Context, now time.Time) (int64, error) {
	sql := `
            UPDATE "room-booking".booking
            SET status='completed'
            WHERE status='confirmed' AND "endTime" < $1;
        `

	tag, err := r.pool.Exec(ctx, sql, now)

	if err != nil {
		return 0, fmt.Errorf("failed to complete past bookings: %w", err)
	}

	return tag.RowsAffected(), nil
}

type RoomBookingCount struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Count    int    `json:"bookingCount"`
}

type WeekDayBookingCount struct {
	WeekDay string `json:"dayOfWeek"`
	Count   int    `json:"bookingCount"`
}

func (r *Repository) GetBookingCountPerRoom(ctx context.Context) ([]RoomBookingCount, error) {
	sql := `
		SELECT booking."roomId", room.name, COUNT(*) as booking_count
		FROM "room-booking".booking
		JOIN "room-booking".room ON room.id = booking."roomId"
		WHERE booking.status <> 'cancelled'
		GROUP BY booking."roomId", room.name
		ORDER BY booking_count DESC;
	`

	rows, err := r.pool.Query(ctx, sql)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings count per room: %w", err)
	}

	defer rows.Close()

	return collectRoomCounts(rows)
}

func (r *Repository) GetBookingCountPerRoomInPeriod(ctx context.Context, start, end time.Time) ([]RoomBookingCount, error) {
	sql := `
		SELECT booking."roomId", room.name, COUNT(*) as booking_count
		FROM "room-booking".booking
		JOIN "room-booking".room ON room.id = booking."roomId"
		WHERE booking."startTime" BETWEEN $1 AND $2
		AND booking.status <> 'cancelled'
		GROUP BY booking."roomId", room.name
		ORDER BY booking_count DESC;
	`

	rows, err := r.pool.Query(ctx, sql, start, end)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings count per room: %w", err)
	}

	defer rows.Close()

	return collectRoomCounts(rows)
}

func collectRoomCounts(rows pgx.Rows) ([]RoomBookingCount, error) {
	stats := []RoomBookingCount{}

	for rows.Next() {
		var stat RoomBookingCount
		err := rows.Scan(&stat.RoomID, &stat.RoomName, &stat.Count)

		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings rows: %w", err)
	}

	return stats, nil
}

func (r *Repository) GetBookingCountPerWeekDay(ctx context.Context) ([]WeekDayBookingCount, error) {
	sql := `
		SELECT
			TO_CHAR("startTime", 'Day') as day_of_week,
			COUNT(*) as booking_count
		FROM
			"room-booking".booking
		WHERE booking.status <> 'cancelled'
		GROUP BY
			TO_CHAR("startTime", 'Day')
		ORDER BY
			booking_count DESC;
	`

	rows, err := r.pool.Query(ctx, sql)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings count per weekday: %w", err)
	}

	defer rows.Close()

	stats := []WeekDayBookingCount{}

	for rows.Next() {
		var stat WeekDayBookingCount
		err := rows.Scan(&stat.WeekDay, &stat.Count)

		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings rows: %w", err)
	}

	return stats, nil
}

// isExclusionViolation matches the booking_no_overlap exclusion constraint
// (SQLSTATE 23P01). The constraint is the commit-time authority on
// availability, so a violation here is an ordinary conflict, not a bug.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
