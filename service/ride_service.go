package service

import (
	"context"
	"math"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

type RideRequest struct {
	PickupAddress  string
	PickupLat      float64
	PickupLng      float64
	DropoffAddress string
	DropoffLat     float64
	DropoffLng     float64
}

type RideService interface {
	Request(ctx context.Context, passengerID string, req RideRequest) (*models.Ride, error)
	Accept(ctx context.Context, driverUserID, rideID string) (*models.Ride, error)
	UpdateStatus(ctx context.Context, driverUserID, rideID, status string) (*models.Ride, error)
	Cancel(ctx context.Context, passengerID, rideID string) (*models.Ride, error)
	Active(ctx context.Context, userID, role string) (*models.RideView, error)
}

type rideService struct {
	rides storage.IRideStorage
	users storage.IUserStorage
	log   logger.ILogger
}

func NewRideService(stg storage.IStorage, log logger.ILogger) RideService {
	return &rideService{
		rides: stg.Ride(),
		users: stg.User(),
		log:   log,
	}
}

func (s *rideService) Request(ctx context.Context, passengerID string, req RideRequest) (*models.Ride, error) {
	ride := &models.Ride{
		PassengerID:    passengerID,
		PickupAddress:  req.PickupAddress,
		PickupLat:      req.PickupLat,
		PickupLng:      req.PickupLng,
		DropoffAddress: req.DropoffAddress,
		DropoffLat:     req.DropoffLat,
		DropoffLng:     req.DropoffLng,
		Status:         models.RideRequested,
	}
	return s.rides.Create(ctx, ride)
}

// Accept assigns the ride to the calling driver through a single
// conditional update scoped by status = REQUESTED. When two drivers race,
// exactly one update changes a row; the loser gets Conflict, never a
// silent overwrite.
func (s *rideService) Accept(ctx context.Context, driverUserID, rideID string) (*models.Ride, error) {
	profile, err := s.users.GetDriverProfile(ctx, driverUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Invalid("user is not a registered driver")
		}
		return nil, err
	}

	won, err := s.rides.Accept(ctx, rideID, profile.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		if _, err := s.rides.GetByID(ctx, rideID); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("ride no longer available")
	}

	return s.rides.GetByID(ctx, rideID)
}

// UpdateStatus advances an assigned ride. Only the accepting driver may
// move it: ACCEPTED to IN_PROGRESS or CANCELLED, IN_PROGRESS to COMPLETED.
// Completion computes the fare.
func (s *rideService) UpdateStatus(ctx context.Context, driverUserID, rideID, status string) (*models.Ride, error) {
	profile, err := s.users.GetDriverProfile(ctx, driverUserID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Invalid("user is not a registered driver")
		}
		return nil, err
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID == nil || *ride.DriverID != profile.ID {
		return nil, apperr.Forbidden("you are not the driver for this ride")
	}

	if !validDriverTransition(ride.Status, status) {
		return nil, apperr.Conflict("ride cannot move from " + ride.Status + " to " + status)
	}

	var fare *int64
	if status == models.RideCompleted {
		f := computeFare(ride)
		fare = &f
	}

	return s.rides.UpdateStatus(ctx, rideID, status, fare)
}

// Cancel is the passenger's exit: allowed while the ride is REQUESTED or
// ACCEPTED, and only on their own ride.
func (s *rideService) Cancel(ctx context.Context, passengerID, rideID string) (*models.Ride, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.PassengerID != passengerID {
		return nil, apperr.Forbidden("you are not the passenger for this ride")
	}

	if ride.Status != models.RideRequested && ride.Status != models.RideAccepted {
		return nil, apperr.Conflict("ride can no longer be cancelled")
	}

	return s.rides.UpdateStatus(ctx, rideID, models.RideCancelled, nil)
}

func (s *rideService) Active(ctx context.Context, userID, role string) (*models.RideView, error) {
	if role == models.RoleDriver {
		profile, err := s.users.GetDriverProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.rides.ActiveForDriver(ctx, profile.ID)
	}
	return s.rides.ActiveForPassenger(ctx, userID)
}

func validDriverTransition(from, to string) bool {
	switch from {
	case models.RideAccepted:
		return to == models.RideInProgress || to == models.RideCancelled
	case models.RideInProgress:
		return to == models.RideCompleted
	default:
		return false
	}
}

// computeFare prices a completed ride as base 500 plus 100 per kilometer,
// where distance is the planar approximation sqrt(dLat^2+dLng^2)*111 km.
func computeFare(ride *models.Ride) int64 {
	dLat := ride.DropoffLat - ride.PickupLat
	dLng := ride.DropoffLng - ride.PickupLng
	dist := math.Sqrt(dLat*dLat+dLng*dLng) * 111
	return int64(math.Round(500 + dist*100))
}
