package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mobistay/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Property() IPropertyStorage
	Booking() IBookingStorage
	Ride() IRideStorage
	Verification() IVerificationStorage
	Close()
	GetPool() *pgxpool.Pool
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Bio       *string
	AvatarURL *string
	Address   *string
}

type IUserStorage interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email string, phone *string) (bool, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error)
	MarkVerified(ctx context.Context, id string, idStatus string) (*models.User, error)

	// Document submission and identity review mutate the user row and append
	// the audit record in a single transaction.
	SubmitOwnerDocuments(ctx context.Context, userID string, profile *models.OwnerProfile) (*models.User, error)
	SubmitDriverDocuments(ctx context.Context, userID, idCardURL, licenseImageURL, licenseNumber string) (*models.User, error)
	SetIdentityStatus(ctx context.Context, userID, adminID, newStatus string, isVerified bool, reason *string) (*models.User, error)

	GetDriverProfile(ctx context.Context, userID string) (*models.DriverProfile, error)
	GetDriverProfileByID(ctx context.Context, profileID string) (*models.DriverProfile, error)
	UpdateVehicle(ctx context.Context, userID string, vehicle models.Vehicle) (*models.DriverProfile, error)
	SetDriverOnline(ctx context.Context, userID string, online bool) (*models.DriverProfile, error)
}

// PropertyFilter narrows a traveler search; nil fields match everything.
type PropertyFilter struct {
	City     *string
	PriceMin *int64
	PriceMax *int64
}

type IPropertyStorage interface {
	Create(ctx context.Context, property *models.Property) (*models.Property, error)
	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.Property, error)
	// Search returns active listings with verified owners matching the
	// filter, capped at limit rows.
	Search(ctx context.Context, filter PropertyFilter, limit int) ([]*models.PropertyView, error)
	SetAvailability(ctx context.Context, id string, isActive bool, blockedDates []time.Time) (*models.Property, error)
	CountActiveForOwner(ctx context.Context, ownerID string) (int, error)
}

type IBookingStorage interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	HasConfirmedOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)
	// ConfirmIfAvailable flips PENDING to CONFIRMED only when no other
	// CONFIRMED booking on the property overlaps the range; a single
	// conditional update, reporting whether a row was changed.
	ConfirmIfAvailable(ctx context.Context, bookingID, propertyID string, checkIn, checkOut time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error)
	ListForTraveler(ctx context.Context, travelerID string) ([]*models.BookingView, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.BookingView, error)
	OwnerRevenue(ctx context.Context, ownerID string) (int64, error)
	CountForOwner(ctx context.Context, ownerID string) (int, error)
}

type IRideStorage interface {
	Create(ctx context.Context, ride *models.Ride) (*models.Ride, error)
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	// Accept assigns the ride to a driver only while it is still REQUESTED;
	// reports whether the compare-and-swap won.
	Accept(ctx context.Context, rideID, driverProfileID string) (bool, error)
	UpdateStatus(ctx context.Context, rideID, status string, fare *int64) (*models.Ride, error)
	ActiveForPassenger(ctx context.Context, passengerID string) (*models.RideView, error)
	ActiveForDriver(ctx context.Context, driverProfileID string) (*models.RideView, error)
}

type IVerificationStorage interface {
	ListForUser(ctx context.Context, userID string) ([]*models.VerificationLog, error)
}
