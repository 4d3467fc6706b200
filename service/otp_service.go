package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"mobistay/pkg/apperr"
	"mobistay/pkg/logger"
	"mobistay/pkg/notify"
	redisstore "mobistay/storage/redis"
)

type OTPService interface {
	Issue(ctx context.Context, userID string, email *string, phone *string) error
	Redeem(ctx context.Context, userID, code string) (bool, error)
}

type otpService struct {
	eph   *redisstore.Ephemeral
	email notify.Gateway
	sms   notify.Gateway
	ttl   time.Duration
	log   logger.ILogger
}

func NewOTPService(eph *redisstore.Ephemeral, email, sms notify.Gateway, ttl time.Duration, log logger.ILogger) OTPService {
	return &otpService{eph: eph, email: email, sms: sms, ttl: ttl, log: log}
}

func otpKey(userID string) string {
	return "auth:otp:" + userID
}

// Issue generates a fresh 6-digit code, stores it under the user's key for
// the configured lifetime, and dispatches it to every available channel
// concurrently. A failed send on one channel never blocks the other; sends
// are best-effort and only logged.
func (s *otpService) Issue(ctx context.Context, userID string, email *string, phone *string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := s.eph.SetEX(ctx, otpKey(userID), code, s.ttl); err != nil {
		s.log.Error("failed to store otp", logger.String("user_id", userID), logger.Error(err))
		return apperr.Unavailable("could not issue verification code", err)
	}

	var wg sync.WaitGroup
	if email != nil && *email != "" {
		wg.Add(1)
		go func(dest string) {
			defer wg.Done()
			if err := s.email.SendCode(ctx, dest, code); err != nil {
				s.log.Warning("otp email delivery failed", logger.String("user_id", userID), logger.Error(err))
			}
		}(*email)
	}
	if phone != nil && *phone != "" {
		wg.Add(1)
		go func(dest string) {
			defer wg.Done()
			if err := s.sms.SendCode(ctx, dest, code); err != nil {
				s.log.Warning("otp sms delivery failed", logger.String("user_id", userID), logger.Error(err))
			}
		}(*phone)
	}
	wg.Wait()

	return nil
}

// Redeem burns the stored code on the first exact match. A second attempt
// with the same value finds nothing and fails, which closes the replay
// window. A wrong guess leaves the code in place; the burn happens through
// an atomic read-and-delete so concurrent redeems of the correct code
// cannot both succeed.
func (s *otpService) Redeem(ctx context.Context, userID, code string) (bool, error) {
	stored, err := s.eph.Get(ctx, otpKey(userID))
	if errors.Is(err, redisstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Unavailable("could not verify code", err)
	}
	if stored != code {
		return false, nil
	}

	burned, err := s.eph.GetDel(ctx, otpKey(userID))
	if errors.Is(err, redisstore.ErrNotFound) {
		// Lost the race to another redeem.
		return false, nil
	}
	if err != nil {
		return false, apperr.Unavailable("could not verify code", err)
	}
	return burned == code, nil
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
