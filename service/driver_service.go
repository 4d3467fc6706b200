package service

import (
	"context"
	"time"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
	redisstore "mobistay/storage/redis"
)

const driverGeoKey = "drivers:locations"

func presenceKey(userID string) string {
	return "driver:" + userID + ":active"
}

type DriverService interface {
	RegisterVehicle(ctx context.Context, userID string, vehicle models.Vehicle) (*models.DriverProfile, error)
	SetStatus(ctx context.Context, userID string, online bool, location *models.Coordinate) (*models.DriverProfile, error)
	FindNearby(ctx context.Context, lat, lng, radiusKM float64) ([]*models.NearbyDriver, error)
}

type driverService struct {
	users       storage.IUserStorage
	eph         *redisstore.Ephemeral
	presenceTTL time.Duration
	log         logger.ILogger
}

func NewDriverService(stg storage.IStorage, eph *redisstore.Ephemeral, presenceTTL time.Duration, log logger.ILogger) DriverService {
	return &driverService{
		users:       stg.User(),
		eph:         eph,
		presenceTTL: presenceTTL,
		log:         log,
	}
}

func (s *driverService) RegisterVehicle(ctx context.Context, userID string, vehicle models.Vehicle) (*models.DriverProfile, error) {
	if _, err := s.users.GetDriverProfile(ctx, userID); err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Invalid("driver profile not found, complete document submission first")
		}
		return nil, err
	}
	return s.users.UpdateVehicle(ctx, userID, vehicle)
}

// SetStatus flips the durable online flag and keeps the ephemeral presence
// in step: going online writes the geospatial entry plus the expiring
// "active" marker, going offline removes both. The marker bounds how long
// a driver stays discoverable without a heartbeat; the durable flag may lag
// behind it, and dispatch trusts the ephemeral side.
func (s *driverService) SetStatus(ctx context.Context, userID string, online bool, location *models.Coordinate) (*models.DriverProfile, error) {
	if online && location == nil {
		return nil, apperr.Invalid("location is required to go online")
	}

	profile, err := s.users.SetDriverOnline(ctx, userID, online)
	if err != nil {
		return nil, err
	}

	if online {
		if err := s.eph.GeoAdd(ctx, driverGeoKey, userID, location.Lng, location.Lat); err != nil {
			s.log.Error("failed to publish driver location", logger.String("user_id", userID), logger.Error(err))
			return nil, apperr.Unavailable("presence store unreachable", err)
		}
		if err := s.eph.SetEX(ctx, presenceKey(userID), "true", s.presenceTTL); err != nil {
			s.log.Error("failed to set presence marker", logger.String("user_id", userID), logger.Error(err))
			return nil, apperr.Unavailable("presence store unreachable", err)
		}
	} else {
		if err := s.eph.GeoRemove(ctx, driverGeoKey, userID); err != nil {
			s.log.Warning("failed to remove driver location", logger.String("user_id", userID), logger.Error(err))
		}
		if err := s.eph.Del(ctx, presenceKey(userID)); err != nil {
			s.log.Warning("failed to remove presence marker", logger.String("user_id", userID), logger.Error(err))
		}
	}

	return profile, nil
}

// FindNearby answers a dispatch query from the geospatial index, keeping
// only drivers whose presence marker is still alive and whose durable
// record survives the cross-check (verified account, online flag still
// set). Entries failing any check are dropped silently; they are stale
// index residue, not errors.
func (s *driverService) FindNearby(ctx context.Context, lat, lng, radiusKM float64) ([]*models.NearbyDriver, error) {
	hits, err := s.eph.GeoRadiusKM(ctx, driverGeoKey, lng, lat, radiusKM)
	if err != nil {
		return nil, apperr.Unavailable("presence store unreachable", err)
	}

	drivers := make([]*models.NearbyDriver, 0, len(hits))
	for _, hit := range hits {
		alive, err := s.eph.Exists(ctx, presenceKey(hit.Member))
		if err != nil || !alive {
			continue
		}

		profile, err := s.users.GetDriverProfile(ctx, hit.Member)
		if err != nil || !profile.IsOnline {
			continue
		}

		user, err := s.users.GetByID(ctx, hit.Member)
		if err != nil || !user.IsVerified {
			continue
		}

		drivers = append(drivers, &models.NearbyDriver{
			UserID:     hit.Member,
			ProfileID:  profile.ID,
			DistanceKM: hit.DistanceKM,
		})
	}
	return drivers, nil
}
