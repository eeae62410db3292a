package repositories

import (
	"chat-sync/codec"
	"chat-sync/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const accountKey = "account:current"

type IAccountRepository interface {
	SaveAccount(account Account) error
	GetAccount() (Account, error)
	DeleteAccount() error
}

// Account is the signed-in user as handed over by the auth collaborator.
type Account struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Token    string    `json:"token,omitempty"`
	SignedIn time.Time `json:"signedIn"`
}

type AccountRepository struct {
	db *badger.DB
}

func NewAccountRepository(db *badger.DB) IAccountRepository {
	return &AccountRepository{db: db}
}

func (a AccountRepository) SaveAccount(account Account) error {
	data, err := codec.JSON.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(accountKey), data)
	})
}

// GetAccount returns errors.ErrAccountNotFound when nobody is signed in.
func (a AccountRepository) GetAccount() (Account, error) {
	var account Account
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(accountKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return codec.JSON.Unmarshal(val, &account)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return Account{}, errors.ErrAccountNotFound
	}
	return account, err
}

func (a AccountRepository) DeleteAccount() error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(accountKey))
	})
}
