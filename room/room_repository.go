package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct{ pool *pgxpool.Pool }

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roomSelect = `
        SELECT room.id, room.name, room.capacity, room.location, room.floor, room."roomNumber", room.active,
               COALESCE(array_agg(amenity.name ORDER BY amenity.name) FILTER (WHERE amenity.name IS NOT NULL), '{}')
        FROM "room-booking".room
        LEFT JOIN "room-booking".room_amenity ON room_amenity."roomId" = room.id
        LEFT JOIN "room-booking".amenity ON amenity.id = room_amenity."amenityId"`

func (r *Repository) GetRooms(ctx context.Context, activeOnly bool) ([]Room, error) {
	sql := roomSelect + `
        WHERE ($1 = false OR room.active)
        GROUP BY room.id
        ORDER BY room.name;`

	rows, err := r.pool.Query(ctx, sql, activeOnly)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}

	defer rows.Close()

	var rooms []Room

	for rows.Next() {
		room, err := scanRoom(rows)

		if err != nil {
			return nil, fmt.Errorf("error scanning room row: %w", err)
		}

		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms rows: %w", err)
	}

	return rooms, nil
}

func (r *Repository) GetRoomByID(ctx context.Context, id string) (Room, error) {
	sql := roomSelect + `
        WHERE room.id=$1
        GROUP BY room.id;`

	room, err := scanRoom(r.pool.QueryRow(ctx, sql, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrRoomNotFound
	}

	if err != nil {
		return Room{}, fmt.Errorf("failed to fetch room with id %v: %w", id, err)
	}

	return room, nil
}

func scanRoom(row pgx.Row) (Room, error) {
	var room Room
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Capacity,
		&room.Location,
		&room.Floor,
		&room.RoomNumber,
		&room.Active,
		&room.Amenities,
	)

	return room, err
}

// InsertRoom creates the room and links its amenities in one transaction.
// Amenity names are upserted into the shared catalog.
func (r *Repository) InsertRoom(ctx context.Context, room Room) (Room, error) {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return Room{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx)

	sql := `
			INSERT INTO "room-booking".room(name, capacity, location, floor, "roomNumber", active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;
		`

	err = tx.QueryRow(ctx, sql,
		room.Name,
		room.Capacity,
		room.Location,
		room.Floor,
		room.RoomNumber,
		true,
	).Scan(&room.ID)

	if err != nil {
		return Room{}, fmt.Errorf("failed to insert room: %w", err)
	}

	if err := linkAmenities(ctx, tx, room.ID, room.Amenities); err != nil {
		return Room{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Room{}, fmt.Errorf("failed to commit room insert: %w", err)
	}

	room.Active = true

	return room, nil
}

func (r *Repository) UpdateRoom(ctx context.Context, room Room) error {
	tx, err := r.pool.Begin(ctx)

	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx)

	sql := `
			UPDATE "room-booking".room
			SET
				name=$1,
				capacity=$2,
				location=$3,
				floor=$4,
				"roomNumber"=$5
			WHERE id=$6;
		`

	tag, err := tx.Exec(ctx, sql,
		room.Name,
		room.Capacity,
		room.Location,
		room.Floor,
		room.RoomNumber,
		room.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	_, err = tx.Exec(ctx, `DELETE FROM "room-booking".room_amenity WHERE "roomId"=$1;`, room.ID)

	if err != nil {
		return fmt.Errorf("failed to clear room amenities: %w", err)
	}

	if err := linkAmenities(ctx, tx, room.ID, room.Amenities); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit room update: %w", err)
	}

	return nil
}

func (r *Repository) SetRoomActive(ctx context.Context, id string, active bool) error {
	sql := `
            UPDATE "room-booking".room
            SET active=$1
            WHERE id=$2;
        `

	tag, err := r.pool.Exec(ctx, sql, active, id)

	if err != nil {
		return fmt.Errorf("failed to update room '%v' active flag: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	return nil
}

func (r *Repository) GetAmenities(ctx context.Context) ([]string, error) {
	sql := `SELECT name FROM "room-booking".amenity ORDER BY name;`

	rows, err := r.pool.Query(ctx, sql)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch amenities: %w", err)
	}

	defer rows.Close()

	amenities := []string{}

	for rows.Next() {
		var name string

		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan amenity row: %w", err)
		}

		amenities = append(amenities, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amenity rows: %w", err)
	}

	return amenities, nil
}

func linkAmenities(ctx context.Context, tx pgx.Tx, roomID string, amenities []string) error {
	for _, name := range amenities {
		var amenityID string

		sql := `
				INSERT INTO "room-booking".amenity(name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
				RETURNING id;
			`

		if err := tx.QueryRow(ctx, sql, name).Scan(&amenityID); err != nil {
			return fmt.Errorf("failed to upsert amenity '%v': %w", name, err)
		}

		linkSQL := `
				INSERT INTO "room-booking".room_amenity("roomId", "amenityId")
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING;
			`

		if _, err := tx.Exec(ctx, linkSQL, roomID, amenityID); err != nil {
			return fmt.Errorf("failed to link amenity '%v': %w", name, err)
		}
	}

	return nil
}
