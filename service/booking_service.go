package service

import (
	"context"
	"math"
	"time"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

type BookingService interface {
	Create(ctx context.Context, travelerID, propertyID string, checkIn, checkOut time.Time, guests int) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actorID, bookingID, newStatus string) (*models.Booking, error)
	ListForTraveler(ctx context.Context, travelerID string) ([]*models.BookingView, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.BookingView, error)
	OwnerStats(ctx context.Context, ownerID string) (*models.OwnerStats, error)
}

type bookingService struct {
	bookings   storage.IBookingStorage
	properties storage.IPropertyStorage
	log        logger.ILogger
}

func NewBookingService(stg storage.IStorage, log logger.ILogger) BookingService {
	return &bookingService{
		bookings:   stg.Booking(),
		properties: stg.Property(),
		log:        log,
	}
}

// Create books a property as PENDING. The candidate range [checkIn,
// checkOut) is rejected when it overlaps a CONFIRMED booking or hits a
// blocked date; other PENDING requests do not block it, confirmation is
// the gate.
func (s *bookingService) Create(ctx context.Context, travelerID, propertyID string, checkIn, checkOut time.Time, guests int) (*models.Booking, error) {
	if !checkOut.After(checkIn) {
		return nil, apperr.Invalid("check-out must be after check-in")
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsActive {
		return nil, apperr.Invalid("property is not active for booking")
	}

	overlaps, err := s.bookings.HasConfirmedOverlap(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, apperr.Conflict("property is already booked for these dates")
	}
	if blockedDateInRange(property.BlockedDates, checkIn, checkOut) {
		return nil, apperr.Conflict("property is blocked for these dates")
	}

	booking := &models.Booking{
		PropertyID: propertyID,
		TravelerID: travelerID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		TotalPrice: int64(nights(checkIn, checkOut)) * property.PricePerNight,
		Status:     models.BookingPending,
	}
	return s.bookings.Create(ctx, booking)
}

// UpdateStatus handles the two caller-reachable transitions. Confirmation
// is owner-only and re-runs the overlap check atomically at confirmation
// time: an overlap that appeared after creation still fails. Cancellation
// is open to owner or traveler while the booking is PENDING or CONFIRMED.
func (s *bookingService) UpdateStatus(ctx context.Context, actorID, bookingID, newStatus string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return nil, err
	}

	isOwner := property.OwnerID == actorID
	isTraveler := booking.TravelerID == actorID

	switch newStatus {
	case models.BookingConfirmed:
		if !isOwner {
			return nil, apperr.Forbidden("only the property owner can confirm a booking")
		}
		if booking.Status != models.BookingPending {
			return nil, apperr.Conflict("only pending bookings can be confirmed")
		}
		if blockedDateInRange(property.BlockedDates, booking.CheckIn, booking.CheckOut) {
			return nil, apperr.Conflict("property is blocked for these dates")
		}

		confirmed, err := s.bookings.ConfirmIfAvailable(ctx, bookingID, booking.PropertyID, booking.CheckIn, booking.CheckOut)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, apperr.Conflict("dates are no longer available for this booking")
		}
		return s.bookings.GetByID(ctx, bookingID)

	case models.BookingCancelled:
		if !isOwner && !isTraveler {
			return nil, apperr.Forbidden("unauthorized to cancel this booking")
		}
		if booking.Status != models.BookingPending && booking.Status != models.BookingConfirmed {
			return nil, apperr.Conflict("booking can no longer be cancelled")
		}
		return s.bookings.UpdateStatus(ctx, bookingID, models.BookingCancelled)

	default:
		return nil, apperr.Forbidden("transition not permitted")
	}
}

func (s *bookingService) ListForTraveler(ctx context.Context, travelerID string) ([]*models.BookingView, error) {
	return s.bookings.ListForTraveler(ctx, travelerID)
}

func (s *bookingService) ListForOwner(ctx context.Context, ownerID string) ([]*models.BookingView, error) {
	return s.bookings.ListForOwner(ctx, ownerID)
}

// OwnerStats sums revenue over CONFIRMED and COMPLETED bookings only;
// the booking count is unfiltered, the property count covers active
// listings.
func (s *bookingService) OwnerStats(ctx context.Context, ownerID string) (*models.OwnerStats, error) {
	revenue, err := s.bookings.OwnerRevenue(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	bookingCount, err := s.bookings.CountForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	propertyCount, err := s.properties.CountActiveForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &models.OwnerStats{
		TotalRevenue:  revenue,
		BookingCount:  bookingCount,
		PropertyCount: propertyCount,
	}, nil
}

// nights is the stay length in whole days, partial days counting as a
// full night, with a one-night minimum.
func nights(checkIn, checkOut time.Time) int {
	days := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// blockedDateInRange reports whether any explicitly blocked day falls
// inside [checkIn, checkOut). Blocked dates are individual days.
func blockedDateInRange(blocked []time.Time, checkIn, checkOut time.Time) bool {
	for _, d := range blocked {
		if !d.Before(checkIn) && d.Before(checkOut) {
			return true
		}
	}
	return false
}
