package repositories

import (
	"chat-sync/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Account_Lifecycle(t *testing.T) {
	req := require.New(t)
	repository := NewAccountRepository(openDB(t))

	_, err := repository.GetAccount()
	req.ErrorIs(err, errors.ErrAccountNotFound)

	account := Account{ID: "u-1", Email: "alice@example.com", SignedIn: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	req.NoError(repository.SaveAccount(account))

	fetched, err := repository.GetAccount()
	req.NoError(err)
	req.Equal(account, fetched)

	req.NoError(repository.DeleteAccount())
	_, err = repository.GetAccount()
	req.ErrorIs(err, errors.ErrAccountNotFound)
}
