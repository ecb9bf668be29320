package main

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// ErrDuplicateUsername is returned by Save when the username is already registered.
var ErrDuplicateUsername = errors.New("username already taken")

// AccountStore persists and queries accounts.
type AccountStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByID(ctx context.Context, id int) (bool, error)
	Save(ctx context.Context, account Account) (Account, error)
	FindByUsernameAndPassword(ctx context.Context, username, password string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
}

type sqlAccountStore struct {
	db *sqlx.DB
}

func newAccountStore(db *sqlx.DB) *sqlAccountStore {
	return &sqlAccountStore{db: db}
}

func (s *sqlAccountStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind("SELECT EXISTS(SELECT 1 FROM account WHERE username = ?)"), username)
	if err != nil {
		return false, errors.Wrap(err, "checking username")
	}
	return exists, nil
}

func (s *sqlAccountStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind("SELECT EXISTS(SELECT 1 FROM account WHERE id = ?)"), id)
	if err != nil {
		return false, errors.Wrap(err, "checking account id")
	}
	return exists, nil
}

func (s *sqlAccountStore) Save(ctx context.Context, account Account) (Account, error) {
	err := s.db.GetContext(ctx, &account.ID,
		s.db.Rebind("INSERT INTO account (username, password) VALUES (?, ?) RETURNING id"),
		account.Username, account.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return Account{}, errors.Wrap(ErrDuplicateUsername, err.Error())
		}
		return Account{}, errors.Wrap(err, "saving account")
	}
	return account, nil
}

func (s *sqlAccountStore) FindByUsernameAndPassword(ctx context.Context, username, password string) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a,
		s.db.Rebind("SELECT id, username, password FROM account WHERE username = ? AND password = ?"),
		username, password)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding account by credentials")
	}
	return &a, nil
}

func (s *sqlAccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := s.db.GetContext(ctx, &a,
		s.db.Rebind("SELECT id, username, password FROM account WHERE username = ?"), username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding account by username")
	}
	return &a, nil
}
