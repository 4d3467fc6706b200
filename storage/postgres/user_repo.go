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

const userColumns = `id, email, phone, password, first_name, last_name, avatar_url, bio, address, role, is_verified, id_status, created_at, updated_at`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.Password, &u.FirstName, &u.LastName,
		&u.AvatarURL, &u.Bio, &u.Address, &u.Role, &u.IsVerified, &u.IDStatus,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.NewString()
	query := `
		INSERT INTO users (id, email, phone, password, first_name, last_name, role, is_verified, id_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Phone,
		user.Password,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsVerified,
		user.IDStatus,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		r.log.Error("failed to create user", logger.Error(err))
		return nil, err
	}

	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) ExistsByEmailOrPhone(ctx context.Context, email string, phone *string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR ($2::text IS NOT NULL AND phone = $2))`
	if err := r.db.QueryRow(ctx, query, email, phone).Scan(&exists); err != nil {
		r.log.Error("failed to check user existence", logger.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id string, upd storage.ProfileUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
		    last_name  = COALESCE($2, last_name),
		    bio        = COALESCE($3, bio),
		    avatar_url = COALESCE($4, avatar_url),
		    address    = COALESCE($5, address),
		    updated_at = now()
		WHERE id = $6
		RETURNING ` + userColumns + `
	`
	return scanUser(r.db.QueryRow(ctx, query,
		upd.FirstName, upd.LastName, upd.Bio, upd.AvatarURL, upd.Address, id))
}

func (r *userRepo) MarkVerified(ctx context.Context, id string, idStatus string) (*models.User, error) {
	query := `
		UPDATE users
		SET is_verified = true, id_status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + userColumns + `
	`
	return scanUser(r.db.QueryRow(ctx, query, idStatus, id))
}

func (r *userRepo) SubmitOwnerDocuments(ctx context.Context, userID string, profile *models.OwnerProfile) (*models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO owner_profiles (user_id, id_card_url, ownership_doc_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET id_card_url = EXCLUDED.id_card_url, ownership_doc_url = EXCLUDED.ownership_doc_url
	`, userID, profile.IDCardURL, profile.OwnershipDocURL)
	if err != nil {
		r.log.Error("failed to upsert owner profile", logger.Error(err))
		return nil, err
	}

	user, err := r.reviewInTx(ctx, tx, userID, nil, models.IDStatusPending, false, strPtr("Owner documents submitted"))
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) SubmitDriverDocuments(ctx context.Context, userID, idCardURL, licenseImageURL, licenseNumber string) (*models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO driver_profiles (id, user_id, id_card_url, license_image_url, license_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET id_card_url = EXCLUDED.id_card_url,
		    license_image_url = EXCLUDED.license_image_url,
		    license_number = EXCLUDED.license_number
	`, uuid.NewString(), userID, idCardURL, licenseImageURL, licenseNumber)
	if err != nil {
		r.log.Error("failed to upsert driver profile", logger.Error(err))
		return nil, err
	}

	user, err := r.reviewInTx(ctx, tx, userID, nil, models.IDStatusPending, false, strPtr("Driver documents submitted"))
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) SetIdentityStatus(ctx context.Context, userID, adminID, newStatus string, isVerified bool, reason *string) (*models.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := r.reviewInTx(ctx, tx, userID, &adminID, newStatus, isVerified, reason)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

// reviewInTx records an identity-status transition: it updates the user row
// and appends the audit log entry with the status the row held before the
// update. Log rows are insert-only; nothing in the schema or the repos can
// rewrite them.
func (r *userRepo) reviewInTx(ctx context.Context, tx pgx.Tx, userID string, adminID *string, newStatus string, markVerified bool, reason *string) (*models.User, error) {
	var previous string
	err := tx.QueryRow(ctx, `SELECT id_status FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET id_status = $1, is_verified = CASE WHEN $2 THEN true WHEN $1 = 'REJECTED' THEN false ELSE is_verified END, updated_at = now()
		WHERE id = $3
		RETURNING ` + userColumns + `
	`
	user, err := scanUser(tx.QueryRow(ctx, query, newStatus, markVerified, userID))
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO verification_logs (id, user_id, admin_id, previous_status, new_status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), userID, adminID, previous, newStatus, reason)
	if err != nil {
		r.log.Error("failed to append verification log", logger.Error(err))
		return nil, err
	}

	return user, nil
}

const driverProfileColumns = `id, user_id, id_card_url, license_image_url, license_number, vehicle_model, vehicle_plate, vehicle_color, vehicle_type, is_online`

func scanDriverProfile(row pgx.Row) (*models.DriverProfile, error) {
	var p models.DriverProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.IDCardURL, &p.LicenseImageURL, &p.LicenseNumber,
		&p.VehicleModel, &p.VehiclePlate, &p.VehicleColor, &p.VehicleType, &p.IsOnline,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("driver profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *userRepo) GetDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error) {
	query := `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE user_id = $1`
	return scanDriverProfile(r.db.QueryRow(ctx, query, userID))
}

func (r *userRepo) GetDriverProfileByID(ctx context.Context, profileID string) (*models.DriverProfile, error) {
	query := `SELECT ` + driverProfileColumns + ` FROM driver_profiles WHERE id = $1`
	return scanDriverProfile(r.db.QueryRow(ctx, query, profileID))
}

func (r *userRepo) UpdateVehicle(ctx context.Context, userID string, vehicle models.Vehicle) (*models.DriverProfile, error) {
	query := `
		UPDATE driver_profiles
		SET vehicle_model = $1, vehicle_plate = $2, vehicle_color = $3, vehicle_type = $4, license_number = $5
		WHERE user_id = $6
		RETURNING ` + driverProfileColumns + `
	`
	return scanDriverProfile(r.db.QueryRow(ctx, query,
		vehicle.Model, vehicle.Plate, vehicle.Color, vehicle.Type, vehicle.LicenseNumber, userID))
}

func (r *userRepo) SetDriverOnline(ctx context.Context, userID string, online bool) (*models.DriverProfile, error) {
	query := `
		UPDATE driver_profiles
		SET is_online = $1
		WHERE user_id = $2
		RETURNING ` + driverProfileColumns + `
	`
	return scanDriverProfile(r.db.QueryRow(ctx, query, online, userID))
}

func strPtr(s string) *string { return &s }
