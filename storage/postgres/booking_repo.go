package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

type bookingRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewBookingRepo(db *pgxpool.Pool, log logger.ILogger) storage.IBookingStorage {
	return &bookingRepo{db: db, log: log}
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	booking.ID = uuid.NewString()
	query := `
		INSERT INTO bookings (id, property_id, traveler_id, check_in, check_out, guests, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		booking.ID,
		booking.PropertyID,
		booking.TravelerID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Guests,
		booking.TotalPrice,
		booking.Status,
	).Scan(&booking.CreatedAt)

	if err != nil {
		r.log.Error("failed to create booking", logger.Error(err))
		return nil, err
	}

	return booking, nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	query := `
		SELECT id, property_id, traveler_id, check_in, check_out, guests, total_price, status, created_at
		FROM bookings
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.PropertyID, &b.TravelerID, &b.CheckIn, &b.CheckOut,
		&b.Guests, &b.TotalPrice, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("booking not found")
	}
	if err != nil {
		r.log.Error("failed to get booking by id", logger.String("id", id), logger.Error(err))
		return nil, err
	}
	return &b, nil
}

// HasConfirmedOverlap runs the half-open interval test against CONFIRMED
// bookings: existing.check_in < checkOut AND existing.check_out > checkIn.
// Touching edges do not overlap.
func (r *bookingRepo) HasConfirmedOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE property_id = $1 AND status = 'CONFIRMED'
			  AND check_in < $3 AND check_out > $2
		)
	`
	if err := r.db.QueryRow(ctx, query, propertyID, checkIn, checkOut).Scan(&exists); err != nil {
		r.log.Error("failed to check booking overlap", logger.Error(err))
		return false, err
	}
	return exists, nil
}

// ConfirmIfAvailable is the confirmation-time guard: one conditional update
// whose WHERE clause re-runs the overlap test against every other CONFIRMED
// booking on the property. The database's atomic read-condition-write makes
// two conflicting confirmations serialize; the loser changes zero rows.
func (r *bookingRepo) ConfirmIfAvailable(ctx context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'CONFIRMED'
		WHERE id = $1 AND status = 'PENDING'
		  AND NOT EXISTS (
			SELECT 1 FROM bookings o
			WHERE o.property_id = $2 AND o.id <> $1 AND o.status = 'CONFIRMED'
			  AND o.check_in < $4 AND o.check_out > $3
		  )
	`
	res, err := r.db.Exec(ctx, query, bookingID, propertyID, checkIn, checkOut)
	if err != nil {
		r.log.Error("failed to confirm booking", logger.String("id", bookingID), logger.Error(err))
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	var b models.Booking
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2
		RETURNING id, property_id, traveler_id, check_in, check_out, guests, total_price, status, created_at
	`
	err := r.db.QueryRow(ctx, query, status, id).Scan(
		&b.ID, &b.PropertyID, &b.TravelerID, &b.CheckIn, &b.CheckOut,
		&b.Guests, &b.TotalPrice, &b.Status, &b.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("booking not found")
	}
	if err != nil {
		r.log.Error("failed to update booking status", logger.String("id", id), logger.Error(err))
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) ListForTraveler(ctx context.Context, travelerID string) ([]*models.BookingView, error) {
	query := `
		SELECT b.id, b.property_id, b.traveler_id, b.check_in, b.check_out, b.guests, b.total_price, b.status, b.created_at,
		       p.title, p.city, NULL::text
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE b.traveler_id = $1
		ORDER BY b.check_in DESC
	`
	return r.scanBookingViews(ctx, query, travelerID)
}

func (r *bookingRepo) ListForOwner(ctx context.Context, ownerID string) ([]*models.BookingView, error) {
	query := `
		SELECT b.id, b.property_id, b.traveler_id, b.check_in, b.check_out, b.guests, b.total_price, b.status, b.created_at,
		       p.title, p.city, trim(concat(u.first_name, ' ', u.last_name))
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		JOIN users u ON b.traveler_id = u.id
		WHERE p.owner_id = $1
		ORDER BY b.check_in DESC
	`
	return r.scanBookingViews(ctx, query, ownerID)
}

func (r *bookingRepo) scanBookingViews(ctx context.Context, query string, args ...interface{}) ([]*models.BookingView, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.BookingView
	for rows.Next() {
		var v models.BookingView
		err := rows.Scan(
			&v.ID, &v.PropertyID, &v.TravelerID, &v.CheckIn, &v.CheckOut,
			&v.Guests, &v.TotalPrice, &v.Status, &v.CreatedAt,
			&v.PropertyTitle, &v.PropertyCity, &v.TravelerName,
		)
		if err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (r *bookingRepo) OwnerRevenue(ctx context.Context, ownerID string) (int64, error) {
	var revenue int64
	query := `
		SELECT COALESCE(SUM(b.total_price), 0)
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE p.owner_id = $1 AND b.status IN ('CONFIRMED', 'COMPLETED')
	`
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&revenue); err != nil {
		return 0, err
	}
	return revenue, nil
}

func (r *bookingRepo) CountForOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE p.owner_id = $1
	`
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
