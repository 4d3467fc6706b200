package service

import (
	"context"
	"time"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

type PropertyInput struct {
	Title         string
	City          string
	Address       string
	PricePerNight int64
	Images        []string
}

// searchLimit caps a traveler search result set.
const searchLimit = 50

type PropertyService interface {
	Create(ctx context.Context, ownerID string, in PropertyInput) (*models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	ListMine(ctx context.Context, ownerID string) ([]*models.Property, error)
	Search(ctx context.Context, filter storage.PropertyFilter) ([]*models.PropertyView, error)
	SetAvailability(ctx context.Context, ownerID, propertyID string, isActive bool, blockedDates []time.Time) (*models.Property, error)
}

type propertyService struct {
	properties storage.IPropertyStorage
	users      storage.IUserStorage
	log        logger.ILogger
}

func NewPropertyService(stg storage.IStorage, log logger.ILogger) PropertyService {
	return &propertyService{
		properties: stg.Property(),
		users:      stg.User(),
		log:        log,
	}
}

func (s *propertyService) Create(ctx context.Context, ownerID string, in PropertyInput) (*models.Property, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != models.RoleOwner {
		return nil, apperr.Forbidden("only owners can list properties")
	}
	if in.PricePerNight <= 0 {
		return nil, apperr.Invalid("nightly price must be positive")
	}

	property := &models.Property{
		OwnerID:       ownerID,
		Title:         in.Title,
		City:          in.City,
		Address:       in.Address,
		PricePerNight: in.PricePerNight,
		IsActive:      true,
		Images:        in.Images,
	}
	return s.properties.Create(ctx, property)
}

func (s *propertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	return s.properties.GetByID(ctx, id)
}

func (s *propertyService) ListMine(ctx context.Context, ownerID string) ([]*models.Property, error) {
	return s.properties.ListForOwner(ctx, ownerID)
}

// Search is the traveler's discovery surface: active listings whose owner
// passed identity review, optionally narrowed by city and nightly price
// bounds.
func (s *propertyService) Search(ctx context.Context, filter storage.PropertyFilter) ([]*models.PropertyView, error) {
	if filter.PriceMin != nil && filter.PriceMax != nil && *filter.PriceMin > *filter.PriceMax {
		return nil, apperr.Invalid("minimum price exceeds maximum price")
	}
	return s.properties.Search(ctx, filter, searchLimit)
}

// SetAvailability updates the active flag and the explicit blocked-date
// list, owner only.
func (s *propertyService) SetAvailability(ctx context.Context, ownerID, propertyID string, isActive bool, blockedDates []time.Time) (*models.Property, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != ownerID {
		return nil, apperr.Forbidden("you do not own this property")
	}
	return s.properties.SetAvailability(ctx, propertyID, isActive, blockedDates)
}
