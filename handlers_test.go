package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAccountStore returns canned results; unset errors mean success.
type fakeAccountStore struct {
	usernameTaken bool
	saveErr       error
	saved         []Account
}

func (f *fakeAccountStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return f.usernameTaken, nil
}

func (f *fakeAccountStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	return true, nil
}

func (f *fakeAccountStore) Save(ctx context.Context, account Account) (Account, error) {
	if f.saveErr != nil {
		return Account{}, f.saveErr
	}
	account.ID = len(f.saved) + 1
	f.saved = append(f.saved, account)
	return account, nil
}

func (f *fakeAccountStore) FindByUsernameAndPassword(ctx context.Context, username, password string) (*Account, error) {
	return nil, nil
}

func (f *fakeAccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return nil, nil
}

// fakeMessageStore fails every call with err.
type fakeMessageStore struct {
	err error
}

func (f *fakeMessageStore) Save(ctx context.Context, message Message) (Message, error) {
	return Message{}, f.err
}

func (f *fakeMessageStore) FindAll(ctx context.Context) ([]Message, error) {
	return nil, f.err
}

func (f *fakeMessageStore) FindByID(ctx context.Context, id int) (*Message, error) {
	return nil, f.err
}

func (f *fakeMessageStore) DeleteByID(ctx context.Context, id int) (int, error) {
	return 0, f.err
}

func (f *fakeMessageStore) ExistsByID(ctx context.Context, id int) (bool, error) {
	return false, f.err
}

func (f *fakeMessageStore) UpdateByID(ctx context.Context, id int, text string) (int, error) {
	return 0, f.err
}

func (f *fakeMessageStore) FindByPostedBy(ctx context.Context, accountID int) ([]Message, error) {
	return nil, f.err
}

func newFakeServer(accounts AccountStore, messages MessageStore) (*httptest.Server, *test.Hook) {
	log, hook := test.NewNullLogger()
	s := newServer(accounts, messages, plainHasher{}, log)
	return httptest.NewServer(setupRouter(s, newMetrics())), hook
}

func TestRegisterConstraintRaceIsConflict(t *testing.T) {
	// pre-check passes, insert hits the unique constraint
	accounts := &fakeAccountStore{saveErr: errors.Wrap(ErrDuplicateUsername, "UNIQUE constraint failed: account.username")}
	ts, _ := newFakeServer(accounts, &fakeMessageStore{})
	defer ts.Close()

	status, body := doRequest(t, ts, "POST", "/register", Account{Username: "bob", Password: "pass"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Empty(t, body)
}

func TestStorageFailureIsInternalError(t *testing.T) {
	ts, hook := newFakeServer(&fakeAccountStore{}, &fakeMessageStore{err: errors.New("connection lost")})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Equal(t, "Internal server error", strings.TrimSpace(buf.String()))

	var failed *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			failed = entry
		}
	}
	require.NotNil(t, failed, "storage failure should be logged")
	assert.Equal(t, "request failed", failed.Message)
	assert.Equal(t, "/messages", failed.Data["path"])
	assert.EqualError(t, failed.Data[logrus.ErrorKey].(error), "connection lost")
}

func TestStorageFailureOnEveryMessageRoute(t *testing.T) {
	ts, _ := newFakeServer(&fakeAccountStore{}, &fakeMessageStore{err: errors.New("connection lost")})
	defer ts.Close()

	for _, tc := range []struct {
		method, path string
		payload      interface{}
	}{
		{"POST", "/messages", Message{PostedBy: 1, MessageText: "hi", TimePosted: 1}},
		{"GET", "/messages/1", nil},
		{"DELETE", "/messages/1", nil},
		{"PATCH", "/messages/1", updateMessageRequest{MessageText: "hi"}},
		{"GET", "/accounts/1/messages", nil},
	} {
		status, _ := doRequest(t, ts, tc.method, tc.path, tc.payload)
		assert.Equal(t, http.StatusInternalServerError, status, tc.method+" "+tc.path)
	}
}
