package mailer

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=mocks github.com/consulio/auth-service/internal/mailer Mailer

import "context"

// Mailer delivers the two transactional messages this service sends. Both
// are best-effort at every call site: a delivery failure is logged and never
// fails the surrounding operation.
type Mailer interface {
	SendWelcome(ctx context.Context, to string) error
	SendPasswordReset(ctx context.Context, to, token string) error
}

// Noop is used when SMTP is not configured.
type Noop struct{}

func (Noop) SendWelcome(context.Context, string) error { return nil }

func (Noop) SendPasswordReset(context.Context, string, string) error { return nil }
