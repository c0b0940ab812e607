package service

import (
	"context"

	"github.com/iliyamo/sports-complex/internal/utils"
)

// Hasher is the credential service: one-way hashing and verification.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// TokenService issues and verifies signed identity tokens.
type TokenService interface {
	Issue(userID uint64, role string) (utils.AccessToken, error)
	Parse(raw string) (userID uint64, role string, err error)
}

// Mail is one outbound message request.  Template selects the body; Data
// fills it.
type Mail struct {
	To       string
	Template string
	Subject  string
	Data     map[string]string
}

// Mail templates.
const (
	TemplatePasswordReset  = "password_reset"
	TemplateAccountCreated = "account_created"
)

// Mailer hands messages to the delivery pipeline.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// Purger drops cached responses that depend on taxonomy data.
type Purger interface {
	Purge(ctx context.Context)
}

type nopPurger struct{}

func (nopPurger) Purge(context.Context) {}
