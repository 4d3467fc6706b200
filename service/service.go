package service

import (
	"mobistay/config"
	"mobistay/pkg/logger"
	"mobistay/pkg/notify"
	"mobistay/pkg/token"
	"mobistay/storage"
	redisstore "mobistay/storage/redis"
)

type IServiceManager interface {
	Auth() AuthService
	User() UserService
	Admin() AdminService
	Property() PropertyService
	Booking() BookingService
	Driver() DriverService
	Ride() RideService
	OTP() OTPService
	Limiter() RateLimiter
}

type serviceManager struct {
	auth     AuthService
	user     UserService
	admin    AdminService
	property PropertyService
	booking  BookingService
	driver   DriverService
	ride     RideService
	otp      OTPService
	limiter  RateLimiter
}

func New(cfg config.Config, stg storage.IStorage, eph *redisstore.Ephemeral, email, sms notify.Gateway, log logger.ILogger) IServiceManager {
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTLifetime)

	limiter := NewRateLimiter(eph, log)
	otp := NewOTPService(eph, email, sms, cfg.OTPLifetime, log)

	return &serviceManager{
		auth:     NewAuthService(stg, otp, limiter, tokens, log),
		user:     NewUserService(stg, log),
		admin:    NewAdminService(stg, email, sms, log),
		property: NewPropertyService(stg, log),
		booking:  NewBookingService(stg, log),
		driver:   NewDriverService(stg, eph, cfg.PresenceLifetime, log),
		ride:     NewRideService(stg, log),
		otp:      otp,
		limiter:  limiter,
	}
}

func (s *serviceManager) Auth() AuthService         { return s.auth }
func (s *serviceManager) User() UserService         { return s.user }
func (s *serviceManager) Admin() AdminService       { return s.admin }
func (s *serviceManager) Property() PropertyService { return s.property }
func (s *serviceManager) Booking() BookingService   { return s.booking }
func (s *serviceManager) Driver() DriverService     { return s.driver }
func (s *serviceManager) Ride() RideService         { return s.ride }
func (s *serviceManager) OTP() OTPService           { return s.otp }
func (s *serviceManager) Limiter() RateLimiter      { return s.limiter }
