package service

import (
	"context"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/storage"
)

type UserService interface {
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd storage.ProfileUpdate) (*models.Profile, error)
	SubmitOwnerDocuments(ctx context.Context, userID, idCardURL, ownershipDocURL string) (*models.Profile, error)
	SubmitDriverDocuments(ctx context.Context, userID, idCardURL, licenseImageURL, licenseNumber string) (*models.Profile, error)
}

type userService struct {
	users storage.IUserStorage
	log   logger.ILogger
}

func NewUserService(stg storage.IStorage, log logger.ILogger) UserService {
	return &userService{
		users: stg.User(),
		log:   log,
	}
}

func (s *userService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, upd storage.ProfileUpdate) (*models.Profile, error) {
	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// Document submission requires a filled-in profile first: reviews are done
// against a name and address, not a bare account.
func (s *userService) checkProfileComplete(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if emptyPtr(user.FirstName) || emptyPtr(user.LastName) || emptyPtr(user.Address) {
		return apperr.Invalid("profile incomplete: first name, last name and address are required before submitting documents")
	}
	return nil
}

func (s *userService) SubmitOwnerDocuments(ctx context.Context, userID, idCardURL, ownershipDocURL string) (*models.Profile, error) {
	if err := s.checkProfileComplete(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.users.SubmitOwnerDocuments(ctx, userID, &models.OwnerProfile{
		UserID:          userID,
		IDCardURL:       idCardURL,
		OwnershipDocURL: ownershipDocURL,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("owner documents submitted", logger.String("user_id", userID))
	return user.Profile(), nil
}

func (s *userService) SubmitDriverDocuments(ctx context.Context, userID, idCardURL, licenseImageURL, licenseNumber string) (*models.Profile, error) {
	if err := s.checkProfileComplete(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.users.SubmitDriverDocuments(ctx, userID, idCardURL, licenseImageURL, licenseNumber)
	if err != nil {
		return nil, err
	}
	s.log.Info("driver documents submitted", logger.String("user_id", userID))
	return user.Profile(), nil
}

func emptyPtr(s *string) bool {
	return s == nil || *s == ""
}
