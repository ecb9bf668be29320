package main

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// MessageStore persists and queries messages.
type MessageStore interface {
	Save(ctx context.Context, message Message) (Message, error)
	FindAll(ctx context.Context) ([]Message, error)
	FindByID(ctx context.Context, id int) (*Message, error)
	DeleteByID(ctx context.Context, id int) (int, error)
	ExistsByID(ctx context.Context, id int) (bool, error)
	UpdateByID(ctx context.Context, id int, text string) (int, error)
	FindByPostedBy(ctx context.Context, accountID int) ([]Message, error)
}

const messageColumns = "id, posted_by, message_text, time_posted"

type sqlMessageStore struct {
	db *sqlx.DB
}

func newMessageStore(db *sqlx.DB) *sqlMessageStore {
	return &sqlMessageStore{db: db}
}

func (s *sqlMessageStore) Save(ctx context.Context, message Message) (Message, error) {
	err := s.db.GetContext(ctx, &message.ID,
		s.db.Rebind("INSERT INTO message (posted_by, message_text, time_posted) VALUES (?, ?, ?) RETURNING id"),
		message.PostedBy, message.MessageText, message.TimePosted)
	if err != nil {
		return Message{}, errors.Wrap(err, "saving message")
	}
	return message, nil
}

func (s *sqlMessageStore) FindAll(ctx context.Context) ([]Message, error) {
	return s.queryMessages(ctx, "SELECT "+messageColumns+" FROM message ORDER BY id")
}

func (s *sqlMessageStore) FindByPostedBy(ctx context.Context, accountID int) ([]Message, error) {
	return s.queryMessages(ctx, "SELECT "+messageColumns+" FROM message WHERE posted_by = ? ORDER BY id", accountID)
}

func (s *sqlMessageStore) FindByID(ctx context.Context, id int) (*Message, error) {
	var m Message
	err := s.db.GetContext(ctx, &m, s.db.Rebind("SELECT "+messageColumns+" FROM message WHERE id = ?"), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "finding message")
	}
	return &m, nil
}

func (s *sqlMessageStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, s.db.Rebind("SELECT EXISTS(SELECT 1 FROM message WHERE id = ?)"), id)
	if err != nil {
		return false, errors.Wrap(err, "checking message id")
	}
	return exists, nil
}

// DeleteByID removes the message and returns the number of rows deleted (0 or 1).
func (s *sqlMessageStore) DeleteByID(ctx context.Context, id int) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM message WHERE id = ?"), id)
	if err != nil {
		return 0, errors.Wrap(err, "deleting message")
	}
	return rowsAffected(res)
}

// UpdateByID replaces the message text only; author and timestamp are untouched.
func (s *sqlMessageStore) UpdateByID(ctx context.Context, id int, text string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE message SET message_text = ? WHERE id = ?"), text, id)
	if err != nil {
		return 0, errors.Wrap(err, "updating message")
	}
	return rowsAffected(res)
}

func (s *sqlMessageStore) queryMessages(ctx context.Context, query string, args ...interface{}) ([]Message, error) {
	messages := []Message{}
	if err := s.db.SelectContext(ctx, &messages, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	return messages, nil
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading rows affected")
	}
	return int(n), nil
}
