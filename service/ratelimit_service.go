package service

import (
	"context"
	"fmt"
	"time"

	"mobistay/pkg/logger"
	redisstore "mobistay/storage/redis"
)

type Purpose string

const (
	PurposeOTP      Purpose = "otp"
	PurposeLogin    Purpose = "login"
	PurposeRegister Purpose = "register"
)

type limitRule struct {
	limit  int
	window time.Duration
}

// Per-purpose budgets. OTP issuance is the tightest; registration the
// loosest.
var limitRules = map[Purpose]limitRule{
	PurposeOTP:      {limit: 3, window: 10 * time.Minute},
	PurposeLogin:    {limit: 5, window: 1 * time.Minute},
	PurposeRegister: {limit: 50, window: 1 * time.Hour},
}

type Decision struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type RateLimiter interface {
	Check(ctx context.Context, purpose Purpose, identifier string) (Decision, error)
}

type rateLimiter struct {
	eph *redisstore.Ephemeral
	log logger.ILogger
	now func() time.Time
}

func NewRateLimiter(eph *redisstore.Ephemeral, log logger.ILogger) RateLimiter {
	return &rateLimiter{eph: eph, log: log, now: time.Now}
}

// Check counts requests in the trailing window for (purpose, identifier)
// and admits the call iff the budget is not exhausted. When the ephemeral
// store is unreachable the check fails open: throttling precision is
// sacrificed so the protected endpoint stays available.
func (l *rateLimiter) Check(ctx context.Context, purpose Purpose, identifier string) (Decision, error) {
	rule, ok := limitRules[purpose]
	if !ok {
		rule = limitRules[PurposeLogin]
	}

	now := l.now()
	key := fmt.Sprintf("ratelimit:%s:%s", purpose, identifier)

	admitted, count, oldest, err := l.eph.WindowAdmit(ctx, key, rule.window, rule.limit, now)
	if err != nil {
		l.log.Warning("rate limiter store unavailable, failing open",
			logger.String("purpose", string(purpose)), logger.Error(err))
		return Decision{
			Allowed:   true,
			Limit:     rule.limit,
			Remaining: rule.limit - 1,
			ResetAt:   now.Add(rule.window),
		}, nil
	}

	resetAt := now.Add(rule.window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(rule.window)
	}

	remaining := rule.limit - count
	if admitted {
		remaining--
	}
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   admitted,
		Limit:     rule.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
