package auth

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cardtrackapp/cardtrack-server/internal/errors"
)

const accountKeyPrefix = "account:email:"

// Account is a stored credential record. The ID doubles as the owner
// namespace for the account's synced documents.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// AccountStore persists accounts in a local Badger database keyed by
// normalized email.
type AccountStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenAccountStore opens (or creates) the account database at path.
func OpenAccountStore(path string, logger *slog.Logger) (*AccountStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}

	return &AccountStore{db: db, logger: logger}, nil
}

func accountKey(email string) []byte {
	return []byte(accountKeyPrefix + strings.ToLower(strings.TrimSpace(email)))
}

// Get returns the account registered under email, or errors.ErrNotFound.
func (s *AccountStore) Get(email string) (*Account, error) {
	var account Account
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.NotFoundf("account %s not found", email)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &account)
		})
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Put stores an account, overwriting any existing record for the same email.
func (s *AccountStore) Put(account *Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(accountKey(account.Email), data)
	})
}

// Close closes the underlying database.
func (s *AccountStore) Close() error {
	return s.db.Close()
}
