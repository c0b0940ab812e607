package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
	"github.com/iliyamo/sports-complex/internal/utils"
)

var testHasher = utils.NewBcryptHasher(bcrypt.MinCost)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *fakeMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func (m *fakeMailer) last(t *testing.T) Mail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type countingPurger struct{ n atomic.Int32 }

func (p *countingPurger) Purge(context.Context) { p.n.Add(1) }

// seedUser inserts an account with password "secret-pass".
func seedUser(t *testing.T, db *sql.DB, email string, role model.Role) model.User {
	t.Helper()
	hash, err := testHasher.Hash("secret-pass")
	require.NoError(t, err)
	u := model.User{FirstName: "Sam", LastName: "Reed", Email: email, PasswordHash: hash, Phone: "555-0100", Role: role, IsActive: true}
	_, err = repository.NewUserRepo(db).Create(context.Background(), &u)
	require.NoError(t, err)
	return u
}

func seedSport(t *testing.T, db *sql.DB, name string) uint64 {
	t.Helper()
	e, _, err := repository.NewSportRepo(db).UpsertByName(context.Background(), name)
	require.NoError(t, err)
	return e.ID
}

func requireKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), "error: %v", err)
}
