package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOTPIssueStoresAndDispatches(t *testing.T) {
	mr, eph := newTestEphemeral(t)
	email := &fakeGateway{}
	sms := &fakeGateway{}
	svc := NewOTPService(eph, email, sms, 300*time.Second, testLog)
	ctx := context.Background()

	addr := "u@test.dev"
	phone := "+237670000001"
	require.NoError(t, svc.Issue(ctx, "user-1", &addr, &phone))

	stored, err := mr.Get("auth:otp:user-1")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), stored)

	// Both channels got the same code.
	require.Equal(t, []string{stored}, email.codes)
	require.Equal(t, []string{stored}, sms.codes)

	ttl := mr.TTL("auth:otp:user-1")
	require.Equal(t, 300*time.Second, ttl)
}

func TestOTPIssueSurvivesChannelFailure(t *testing.T) {
	_, eph := newTestEphemeral(t)
	email := &fakeGateway{fail: true}
	sms := &fakeGateway{}
	svc := NewOTPService(eph, email, sms, 300*time.Second, testLog)

	addr := "u@test.dev"
	phone := "+237670000001"
	require.NoError(t, svc.Issue(context.Background(), "user-1", &addr, &phone))
	require.Len(t, sms.codes, 1)
}

func TestOTPRedeemOnceOnly(t *testing.T) {
	mr, eph := newTestEphemeral(t)
	svc := NewOTPService(eph, &fakeGateway{}, &fakeGateway{}, 300*time.Second, testLog)
	ctx := context.Background()

	addr := "u@test.dev"
	require.NoError(t, svc.Issue(ctx, "user-1", &addr, nil))
	code, err := mr.Get("auth:otp:user-1")
	require.NoError(t, err)

	ok, err := svc.Redeem(ctx, "user-1", "000000")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.Redeem(ctx, "user-1", code)
	require.NoError(t, err)
	require.True(t, ok)

	// Replay with the burned code fails.
	ok, err = svc.Redeem(ctx, "user-1", code)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOTPRedeemSingleWinnerUnderContention(t *testing.T) {
	mr, eph := newTestEphemeral(t)
	svc := NewOTPService(eph, &fakeGateway{}, &fakeGateway{}, 300*time.Second, testLog)
	ctx := context.Background()

	addr := "u@test.dev"
	require.NoError(t, svc.Issue(ctx, "user-1", &addr, nil))
	code, err := mr.Get("auth:otp:user-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Redeem(ctx, "user-1", code)
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// The atomic burn admits at most one of the racing redeems.
	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	require.Equal(t, 1, wins)
}

func TestOTPExpires(t *testing.T) {
	mr, eph := newTestEphemeral(t)
	svc := NewOTPService(eph, &fakeGateway{}, &fakeGateway{}, 300*time.Second, testLog)
	ctx := context.Background()

	addr := "u@test.dev"
	require.NoError(t, svc.Issue(ctx, "user-1", &addr, nil))
	code, err := mr.Get("auth:otp:user-1")
	require.NoError(t, err)

	mr.FastForward(301 * time.Second)

	ok, err := svc.Redeem(ctx, "user-1", code)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOTPRedeemUnknownUser(t *testing.T) {
	_, eph := newTestEphemeral(t)
	svc := NewOTPService(eph, &fakeGateway{}, &fakeGateway{}, 300*time.Second, testLog)

	ok, err := svc.Redeem(context.Background(), "nobody", "123456")
	require.NoError(t, err)
	require.False(t, ok)
}
