package notify

import "context"

// Gateway delivers one-time codes and notifications to a destination
// (email address or phone number). Delivery is best-effort: callers log
// failures and never fail the parent operation on them.
type Gateway interface {
	SendCode(ctx context.Context, destination, code string) error
	SendMessage(ctx context.Context, destination, subject, text string) error
}
