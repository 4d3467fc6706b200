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

const propertyColumns = `id, owner_id, title, city, address, price_per_night, is_active, blocked_dates, images, created_at, updated_at`

type propertyRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewPropertyRepo(db *pgxpool.Pool, log logger.ILogger) storage.IPropertyStorage {
	return &propertyRepo{db: db, log: log}
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.City, &p.Address, &p.PricePerNight,
		&p.IsActive, &p.BlockedDates, &p.Images, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("property not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepo) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	property.ID = uuid.NewString()
	query := `
		INSERT INTO properties (id, owner_id, title, city, address, price_per_night, is_active, blocked_dates, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		property.ID,
		property.OwnerID,
		property.Title,
		property.City,
		property.Address,
		property.PricePerNight,
		property.IsActive,
		property.BlockedDates,
		property.Images,
	).Scan(&property.CreatedAt, &property.UpdatedAt)

	if err != nil {
		r.log.Error("failed to create property", logger.Error(err))
		return nil, err
	}

	return property, nil
}

func (r *propertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(r.db.QueryRow(ctx, query, id))
}

func (r *propertyRepo) ListForOwner(ctx context.Context, ownerID string) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *propertyRepo) SetAvailability(ctx context.Context, id string, isActive bool, blockedDates []time.Time) (*models.Property, error) {
	query := `
		UPDATE properties
		SET is_active = $1, blocked_dates = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + propertyColumns + `
	`
	return scanProperty(r.db.QueryRow(ctx, query, isActive, blockedDates, id))
}

func (r *propertyRepo) Search(ctx context.Context, filter storage.PropertyFilter, limit int) ([]*models.PropertyView, error) {
	query := `
		SELECT p.id, p.owner_id, p.title, p.city, p.address, p.price_per_night, p.is_active, p.blocked_dates, p.images, p.created_at, p.updated_at,
		       u.first_name, u.avatar_url
		FROM properties p
		JOIN users u ON p.owner_id = u.id
		WHERE p.is_active = true AND u.is_verified = true
		  AND ($1::text IS NULL OR p.city = $1)
		  AND ($2::bigint IS NULL OR p.price_per_night >= $2)
		  AND ($3::bigint IS NULL OR p.price_per_night <= $3)
		ORDER BY p.created_at DESC
		LIMIT $4
	`
	rows, err := r.db.Query(ctx, query, filter.City, filter.PriceMin, filter.PriceMax, limit)
	if err != nil {
		r.log.Error("failed to search properties", logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var views []*models.PropertyView
	for rows.Next() {
		var v models.PropertyView
		err := rows.Scan(
			&v.ID, &v.OwnerID, &v.Title, &v.City, &v.Address, &v.PricePerNight,
			&v.IsActive, &v.BlockedDates, &v.Images, &v.CreatedAt, &v.UpdatedAt,
			&v.OwnerFirstName, &v.OwnerAvatarURL,
		)
		if err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (r *propertyRepo) CountActiveForOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM properties WHERE owner_id = $1 AND is_active = true`
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
