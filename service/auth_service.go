package service

import (
	"context"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/models"
	"mobistay/pkg/password"
	"mobistay/pkg/token"
	"mobistay/storage"
)

type RegisterInput struct {
	Email     string
	Phone     *string
	Password  string
	Role      string
	FirstName *string
	LastName  *string
	// ClientIP identifies the caller for registration throttling.
	ClientIP string
}

type AuthResult struct {
	User  *models.Profile `json:"user"`
	Token string          `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.Profile, error)
	VerifyOTP(ctx context.Context, userID, code string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, plainPassword, clientIP string) (*AuthResult, error)
}

type authService struct {
	users   storage.IUserStorage
	otp     OTPService
	limiter RateLimiter
	tokens  *token.Manager
	log     logger.ILogger
}

func NewAuthService(stg storage.IStorage, otp OTPService, limiter RateLimiter, tokens *token.Manager, log logger.ILogger) AuthService {
	return &authService{
		users:   stg.User(),
		otp:     otp,
		limiter: limiter,
		tokens:  tokens,
		log:     log,
	}
}

func (s *authService) guard(ctx context.Context, purpose Purpose, identifier string) error {
	decision, err := s.limiter.Check(ctx, purpose, identifier)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return apperr.RateLimited("too many requests, please try again later")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	if err := s.guard(ctx, PurposeRegister, in.ClientIP); err != nil {
		return nil, err
	}

	switch in.Role {
	case models.RoleTraveler, models.RoleOwner, models.RoleDriver:
	default:
		return nil, apperr.Invalid("unsupported role")
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("user with this email or phone already exists")
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:      in.Email,
		Phone:      in.Phone,
		Password:   hash,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Role:       in.Role,
		IsVerified: false,
		IDStatus:   models.IDStatusUnverified,
	})
	if err != nil {
		return nil, err
	}

	// Registration stands even if the code cannot be issued right now;
	// the user can ask for a resend.
	if err := s.otp.Issue(ctx, user.ID, &user.Email, user.Phone); err != nil {
		s.log.Warning("failed to issue otp after registration", logger.String("user_id", user.ID), logger.Error(err))
	}

	return user.Profile(), nil
}

// VerifyOTP redeems the code and activates the account. Travelers are
// approved outright; owners and drivers stay PENDING until an admin
// reviews their documents.
func (s *authService) VerifyOTP(ctx context.Context, userID, code string) (*AuthResult, error) {
	ok, err := s.otp.Redeem(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Invalid("invalid or expired verification code")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	idStatus := models.IDStatusPending
	if user.Role == models.RoleTraveler {
		idStatus = models.IDStatusApproved
	}

	user, err = s.users.MarkVerified(ctx, userID, idStatus)
	if err != nil {
		return nil, err
	}

	jwt, err := s.tokens.Issue(user.ID, user.Role, user.IsVerified)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user.Profile(), Token: jwt}, nil
}

func (s *authService) ResendOTP(ctx context.Context, email string) error {
	if err := s.guard(ctx, PurposeOTP, email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperr.Conflict("user is already verified")
	}

	return s.otp.Issue(ctx, user.ID, &user.Email, user.Phone)
}

// Login deliberately reports the same Invalid failure for an unknown email
// and a wrong password, so account existence is not disclosed.
func (s *authService) Login(ctx context.Context, email, plainPassword, clientIP string) (*AuthResult, error) {
	if err := s.guard(ctx, PurposeLogin, clientIP); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Invalid("invalid credentials")
		}
		return nil, err
	}

	if !password.Verify(plainPassword, user.Password) {
		return nil, apperr.Invalid("invalid credentials")
	}

	if !user.IsVerified {
		return nil, apperr.Forbidden("account not verified, please verify your email or phone")
	}

	jwt, err := s.tokens.Issue(user.ID, user.Role, user.IsVerified)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user.Profile(), Token: jwt}, nil
}
