package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

const rideColumns = `id, passenger_id, driver_id, pickup_address, pickup_lat, pickup_lng, dropoff_address, dropoff_lat, dropoff_lng, status, fare, created_at, updated_at`

type rideRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRideRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRideStorage {
	return &rideRepo{db: db, log: log}
}

func scanRide(row pgx.Row) (*models.Ride, error) {
	var ride models.Ride
	err := row.Scan(
		&ride.ID, &ride.PassengerID, &ride.DriverID,
		&ride.PickupAddress, &ride.PickupLat, &ride.PickupLng,
		&ride.DropoffAddress, &ride.DropoffLat, &ride.DropoffLng,
		&ride.Status, &ride.Fare, &ride.CreatedAt, &ride.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("ride not found")
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *rideRepo) Create(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	ride.ID = uuid.NewString()
	query := `
		INSERT INTO rides (id, passenger_id, pickup_address, pickup_lat, pickup_lng, dropoff_address, dropoff_lat, dropoff_lng, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		ride.ID,
		ride.PassengerID,
		ride.PickupAddress,
		ride.PickupLat,
		ride.PickupLng,
		ride.DropoffAddress,
		ride.DropoffLat,
		ride.DropoffLng,
		ride.Status,
	).Scan(&ride.CreatedAt, &ride.UpdatedAt)

	if err != nil {
		r.log.Error("failed to create ride", logger.Error(err))
		return nil, err
	}

	return ride, nil
}

func (r *rideRepo) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.db.QueryRow(ctx, query, id))
}

// Accept races are settled here: the status condition makes the update a
// compare-and-swap, so of two concurrent drivers exactly one changes a row.
func (r *rideRepo) Accept(ctx context.Context, rideID, driverProfileID string) (bool, error) {
	res, err := r.db.Exec(ctx,
		`UPDATE rides SET status = 'ACCEPTED', driver_id = $1, updated_at = now() WHERE id = $2 AND status = 'REQUESTED'`,
		driverProfileID, rideID)
	if err != nil {
		r.log.Error("failed to accept ride", logger.String("id", rideID), logger.Error(err))
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *rideRepo) UpdateStatus(ctx context.Context, rideID, status string, fare *int64) (*models.Ride, error) {
	query := `
		UPDATE rides
		SET status = $1, fare = COALESCE($2, fare), updated_at = now()
		WHERE id = $3
		RETURNING ` + rideColumns + `
	`
	ride, err := scanRide(r.db.QueryRow(ctx, query, status, fare, rideID))
	if err != nil {
		if !apperr.IsKind(err, apperr.KindNotFound) {
			r.log.Error("failed to update ride status", logger.String("id", rideID), logger.Error(err))
		}
		return nil, err
	}
	return ride, nil
}

func (r *rideRepo) ActiveForPassenger(ctx context.Context, passengerID string) (*models.RideView, error) {
	query := `
		SELECT r.` + rideColumnsPrefixed + `, u.first_name, u.phone
		FROM rides r
		LEFT JOIN driver_profiles d ON r.driver_id = d.id
		LEFT JOIN users u ON d.user_id = u.id
		WHERE r.passenger_id = $1 AND r.status IN ('REQUESTED', 'ACCEPTED', 'IN_PROGRESS')
		ORDER BY r.created_at DESC
		LIMIT 1
	`
	return r.scanRideView(ctx, query, passengerID)
}

func (r *rideRepo) ActiveForDriver(ctx context.Context, driverProfileID string) (*models.RideView, error) {
	query := `
		SELECT r.` + rideColumnsPrefixed + `, u.first_name, u.phone
		FROM rides r
		JOIN users u ON r.passenger_id = u.id
		WHERE r.driver_id = $1 AND r.status IN ('ACCEPTED', 'IN_PROGRESS')
		ORDER BY r.created_at DESC
		LIMIT 1
	`
	return r.scanRideView(ctx, query, driverProfileID)
}

const rideColumnsPrefixed = `id, r.passenger_id, r.driver_id, r.pickup_address, r.pickup_lat, r.pickup_lng, r.dropoff_address, r.dropoff_lat, r.dropoff_lng, r.status, r.fare, r.created_at, r.updated_at`

func (r *rideRepo) scanRideView(ctx context.Context, query string, args ...interface{}) (*models.RideView, error) {
	var v models.RideView
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.PassengerID, &v.DriverID,
		&v.PickupAddress, &v.PickupLat, &v.PickupLng,
		&v.DropoffAddress, &v.DropoffLat, &v.DropoffLng,
		&v.Status, &v.Fare, &v.CreatedAt, &v.UpdatedAt,
		&v.CounterpartName, &v.CounterpartPhone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("no active ride")
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
