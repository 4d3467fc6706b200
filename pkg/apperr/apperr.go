// Package apperr maps business failures onto juju/errors kinds so
// transport layers can translate them to status codes deterministically.
package apperr

import (
	"github.com/juju/errors"
)

// Kind is the failure discriminator callers match on with IsKind.
type Kind = errors.ConstError

const (
	KindNotFound    = errors.NotFound
	KindForbidden   = errors.Forbidden
	KindConflict    = errors.AlreadyExists
	KindRateLimited = errors.QuotaLimitExceeded
	KindInvalid     = errors.NotValid
	KindUnavailable = errors.NotYetAvailable
)

func NotFound(msg string) error    { return errors.NewNotFound(nil, msg) }
func Forbidden(msg string) error   { return errors.NewForbidden(nil, msg) }
func Conflict(msg string) error    { return errors.NewAlreadyExists(nil, msg) }
func RateLimited(msg string) error { return errors.NewQuotaLimitExceeded(nil, msg) }
func Invalid(msg string) error     { return errors.NewNotValid(nil, msg) }

// Unavailable marks a dependency outage, keeping the cause in the chain.
func Unavailable(msg string, err error) error {
	return errors.NewNotYetAvailable(err, msg)
}

func IsKind(err error, k Kind) bool { return errors.Is(err, k) }

// KindOf reports which kind err carries, or "" for foreign errors.
func KindOf(err error) Kind {
	for _, k := range []Kind{
		KindNotFound, KindForbidden, KindConflict,
		KindRateLimited, KindInvalid, KindUnavailable,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ""
}
