// Package session resolves the display name used to tag outgoing messages.
package session

import (
	"chat-sync/errors"
	"chat-sync/repositories"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ModeName    = "name"
	ModeAccount = "account"
)

var validate = validator.New()

type login struct {
	Name string `validate:"required,max=64"`
}

// Static is the unauthenticated strategy: the name typed on the login screen.
type Static struct {
	name string
}

func NewStatic(name string) (*Static, error) {
	l := login{Name: strings.TrimSpace(name)}
	if err := validate.Struct(l); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrNoIdentity, err)
	}
	return &Static{name: l.Name}, nil
}

func (s *Static) ResolveIdentity(ctx context.Context) (string, error) {
	return s.name, ctx.Err()
}

// Account derives the display name from the signed-in account.
type Account struct {
	log        *slog.Logger
	repository repositories.IAccountRepository
}

func NewAccount(log *slog.Logger, repository repositories.IAccountRepository) *Account {
	return &Account{log: log, repository: repository}
}

func (a *Account) ResolveIdentity(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	account, err := a.repository.GetAccount()
	if err != nil {
		if !stderrors.Is(err, errors.ErrAccountNotFound) {
			a.log.Error("Unable to read stored account", "error", err)
		}
		return "", fmt.Errorf("%w: %v", errors.ErrNoIdentity, err)
	}
	name := DisplayName(account.Email)
	if name == "" {
		return "", fmt.Errorf("%w: account %s has no usable e-mail", errors.ErrNoIdentity, account.ID)
	}
	return name, nil
}

// SignIn stores the account handed over by the auth collaborator.
func (a *Account) SignIn(account repositories.Account) error {
	if err := validate.Var(account.Email, "required,email"); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if account.SignedIn.IsZero() {
		account.SignedIn = time.Now().UTC()
	}
	return a.repository.SaveAccount(account)
}

func (a *Account) SignOut() error {
	return a.repository.DeleteAccount()
}

// DisplayName keeps the local part of an e-mail address.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

type tokenClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AccountFromToken reads the identity claims of a token issued by the auth service.
// The signature is not checked here: the token only labels messages locally.
func AccountFromToken(token string) (repositories.Account, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return repositories.Account{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	email := claims.Email
	if email == "" && strings.Contains(claims.Subject, "@") {
		email = claims.Subject
	}
	if email == "" {
		return repositories.Account{}, fmt.Errorf("%w: token carries no e-mail", errors.ErrValidation)
	}
	return repositories.Account{ID: id, Email: email, Token: token}, nil
}
