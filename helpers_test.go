package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashers(t *testing.T) {
	plain, err := newPasswordHasher("")
	require.NoError(t, err)
	assert.True(t, plain.Plain())
	stored, err := plain.Hash("pass")
	require.NoError(t, err)
	assert.Equal(t, "pass", stored)
	assert.True(t, plain.Compare(stored, "pass"))

	hasher, err := newPasswordHasher(hashingBcrypt)
	require.NoError(t, err)
	assert.False(t, hasher.Plain())

	// minimum cost keeps the test fast
	fast := bcryptHasher{cost: bcrypt.MinCost}
	stored, err = fast.Hash("pass")
	require.NoError(t, err)
	assert.NotEqual(t, "pass", stored)
	assert.True(t, fast.Compare(stored, "pass"))
	assert.False(t, fast.Compare(stored, "wrong"))

	_, err = newPasswordHasher("md5")
	assert.Error(t, err)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/messages/12", nil)
	req = mux.SetURLVars(req, map[string]string{"messageId": "12"})
	id, err := pathID(req, "messageId")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	req = mux.SetURLVars(req, map[string]string{"messageId": "1x"})
	_, err = pathID(req, "messageId")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	require.NoError(t, writeJSON(rr, 1))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
