package session

import (
	"chat-sync/errors"
	"chat-sync/repositories"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestStatic_ResolveIdentity(t *testing.T) {
	req := require.New(t)

	provider, err := NewStatic("  budi ")
	req.NoError(err)
	name, err := provider.ResolveIdentity(context.Background())
	req.NoError(err)
	req.Equal("budi", name)

	_, err = NewStatic("   ")
	req.ErrorIs(err, errors.ErrNoIdentity)
}

func newAccount(t *testing.T) *Account {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAccount(slog.Default(), repositories.NewAccountRepository(db))
}

func TestAccount_ResolveIdentity(t *testing.T) {
	req := require.New(t)
	provider := newAccount(t)

	_, err := provider.ResolveIdentity(context.Background())
	req.ErrorIs(err, errors.ErrNoIdentity)

	req.NoError(provider.SignIn(repositories.Account{ID: "u-1", Email: "alice@example.com"}))
	name, err := provider.ResolveIdentity(context.Background())
	req.NoError(err)
	req.Equal("alice", name)

	req.NoError(provider.SignOut())
	_, err = provider.ResolveIdentity(context.Background())
	req.ErrorIs(err, errors.ErrNoIdentity)
}

func TestAccount_SignIn_Rejects_Invalid_Email(t *testing.T) {
	err := newAccount(t).SignIn(repositories.Account{ID: "u-1", Email: "not-an-email"})

	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestAccountFromToken(t *testing.T) {
	req := require.New(t)
	claims := tokenClaims{
		Email:  "sari@example.com",
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "auth",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	req.NoError(err)

	account, err := AccountFromToken(token)

	req.NoError(err)
	req.Equal("user-42", account.ID)
	req.Equal("sari@example.com", account.Email)
	req.Equal(token, account.Token)
}

func TestAccountFromToken_Subject_Fallback(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "eko@example.com"}).
		SignedString([]byte("k"))
	require.NoError(t, err)

	account, err := AccountFromToken(token)

	require.NoError(t, err)
	require.Equal(t, "eko@example.com", account.Email)
	require.Equal(t, "eko@example.com", account.ID)
}

func TestAccountFromToken_Rejects_Garbage(t *testing.T) {
	_, err := AccountFromToken("not.a.token")

	require.ErrorIs(t, err, errors.ErrValidation)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "alice", DisplayName("alice@example.com"))
	require.Equal(t, "bob", DisplayName("bob"))
	require.Equal(t, "", DisplayName("@example.com"))
}
