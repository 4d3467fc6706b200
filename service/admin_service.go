package service

import (
	"context"
	"fmt"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/pkg/notify"
	"mobistay/storage"
)

type AdminService interface {
	VerifyUser(ctx context.Context, adminID, userID, newStatus string, reason *string) (*models.Profile, error)
	VerificationHistory(ctx context.Context, adminID, userID string) ([]*models.VerificationLog, error)
}

type adminService struct {
	users         storage.IUserStorage
	verifications storage.IVerificationStorage
	email         notify.Gateway
	sms           notify.Gateway
	log           logger.ILogger
}

func NewAdminService(stg storage.IStorage, email, sms notify.Gateway, log logger.ILogger) AdminService {
	return &adminService{
		users:         stg.User(),
		verifications: stg.Verification(),
		email:         email,
		sms:           sms,
		log:           log,
	}
}

func (s *adminService) requireAdmin(ctx context.Context, adminID string) error {
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.Role != models.RoleAdmin {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

// VerifyUser settles an identity review. The status change and the audit
// log append happen in one transaction; the decision notification is
// best-effort and never fails the review.
func (s *adminService) VerifyUser(ctx context.Context, adminID, userID, newStatus string, reason *string) (*models.Profile, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	if newStatus != models.IDStatusApproved && newStatus != models.IDStatusRejected {
		return nil, apperr.Invalid("status must be APPROVED or REJECTED")
	}

	user, err := s.users.SetIdentityStatus(ctx, userID, adminID, newStatus, newStatus == models.IDStatusApproved, reason)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, user, newStatus, reason)
	return user.Profile(), nil
}

func (s *adminService) VerificationHistory(ctx context.Context, adminID, userID string) ([]*models.VerificationLog, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	return s.verifications.ListForUser(ctx, userID)
}

func (s *adminService) notifyDecision(ctx context.Context, user *models.User, newStatus string, reason *string) {
	name := "User"
	if user.FirstName != nil && *user.FirstName != "" {
		name = *user.FirstName
	}

	var subject, message string
	if newStatus == models.IDStatusApproved {
		subject = "Account Verified"
		message = fmt.Sprintf("Congratulations %s! Your Mobistay account has been verified. You can now access all features.", name)
	} else {
		subject = "Verification Update"
		why := "Documents invalid"
		if reason != nil && *reason != "" {
			why = *reason
		}
		message = fmt.Sprintf("Hello %s. Your verification request was rejected. Reason: %s.", name, why)
	}

	var err error
	switch {
	case user.Email != "":
		err = s.email.SendMessage(ctx, user.Email, subject, message)
	case user.Phone != nil && *user.Phone != "":
		err = s.sms.SendMessage(ctx, *user.Phone, subject, message)
	}
	if err != nil {
		s.log.Warning("failed to deliver verification decision", logger.String("user_id", user.ID), logger.Error(err))
	}
}
