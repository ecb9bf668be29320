package main

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// server holds the collaborators shared by every handler.
type server struct {
	accounts AccountStore
	messages MessageStore
	hasher   passwordHasher
	log      logrus.FieldLogger
}

func newServer(accounts AccountStore, messages MessageStore, hasher passwordHasher, log logrus.FieldLogger) *server {
	return &server{
		accounts: accounts,
		messages: messages,
		hasher:   hasher,
		log:      log,
	}
}

func (s *server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (s *server) respond(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := writeJSON(w, v); err != nil {
		s.log.WithError(err).WithField("path", r.URL.Path).Warn("writing response")
	}
}

// POST /register
func (s *server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var account Account
	if err := decodeJSON(r, &account); err != nil {
		http.Error(w, "Error parsing request body", http.StatusBadRequest)
		return
	}

	if !isValidAccount(account) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	taken, err := s.accounts.ExistsByUsername(r.Context(), account.Username)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if taken {
		w.WriteHeader(http.StatusConflict)
		return
	}

	account.Password, err = s.hasher.Hash(account.Password)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	created, err := s.accounts.Save(r.Context(), account)
	if errors.Is(err, ErrDuplicateUsername) {
		w.WriteHeader(http.StatusConflict)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.log.WithField("account_id", created.ID).Debug("account registered")
	s.respond(w, r, created)
}

// POST /login
func (s *server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Error parsing request body", http.StatusBadRequest)
		return
	}

	account, err := s.authenticate(r, req)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if account == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s.respond(w, r, account)
}

func (s *server) authenticate(r *http.Request, req loginRequest) (*Account, error) {
	if s.hasher.Plain() {
		return s.accounts.FindByUsernameAndPassword(r.Context(), req.Username, req.Password)
	}

	account, err := s.accounts.FindByUsername(r.Context(), req.Username)
	if err != nil || account == nil {
		return nil, err
	}
	if !s.hasher.Compare(account.Password, req.Password) {
		return nil, nil
	}
	return account, nil
}

// POST /messages
func (s *server) postMessageHandler(w http.ResponseWriter, r *http.Request) {
	var message Message
	if err := decodeJSON(r, &message); err != nil {
		http.Error(w, "Error parsing request body", http.StatusBadRequest)
		return
	}

	if !isValidMessage(message) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	exists, err := s.accounts.ExistsByID(r.Context(), message.PostedBy)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	created, err := s.messages.Save(r.Context(), message)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.respond(w, r, created)
}

// GET /messages
func (s *server) getMessagesHandler(w http.ResponseWriter, r *http.Request) {
	messages, err := s.messages.FindAll(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.respond(w, r, messages)
}

// GET /messages/{messageId} — a missing message is 200 with an empty body
func (s *server) getMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	message, err := s.messages.FindByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if message == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.respond(w, r, message)
}

// DELETE /messages/{messageId}
func (s *server) deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.messages.DeleteByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.respondRows(w, r, rows)
}

// PATCH /messages/{messageId}
func (s *server) updateMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req updateMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Error parsing request body", http.StatusBadRequest)
		return
	}

	if !isValidMessageText(req.MessageText) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	exists, err := s.messages.ExistsByID(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	rows, err := s.messages.UpdateByID(r.Context(), id, req.MessageText)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.respondRows(w, r, rows)
}

// GET /accounts/{accountId}/messages
func (s *server) accountMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "accountId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	messages, err := s.messages.FindByPostedBy(r.Context(), id)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.respond(w, r, messages)
}

// respondRows writes the affected row count, or an empty 200 when nothing changed.
func (s *server) respondRows(w http.ResponseWriter, r *http.Request, rows int) {
	if rows == 0 {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.respond(w, r, rows)
}
