package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// --- Password helpers ---

const (
	hashingPlain  = "plain"
	hashingBcrypt = "bcrypt"
)

// passwordHasher turns a password into its stored form and checks candidates against it.
type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
	// Plain reports whether stored passwords can be matched by equality in SQL.
	Plain() bool
}

func newPasswordHasher(mode string) (passwordHasher, error) {
	switch mode {
	case "", hashingPlain:
		return plainHasher{}, nil
	case hashingBcrypt:
		return bcryptHasher{cost: bcrypt.DefaultCost}, nil
	}
	return nil, errors.Errorf("unknown password hashing mode %q", mode)
}

// plainHasher stores passwords verbatim. Known weakness, kept for compatibility.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return password, nil }

func (plainHasher) Compare(stored, password string) bool { return stored == password }

func (plainHasher) Plain() bool { return true }

type bcryptHasher struct {
	cost int
}

func (h bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(bytes), nil
}

func (bcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func (bcryptHasher) Plain() bool { return false }

// --- Logging helpers ---

func newLogger(level string, production bool) *logrus.Logger {
	log := logrus.New()
	if production {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("invalid log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// --- Request/response helpers ---

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON writes v as JSON with a 200 status.
func writeJSON(w http.ResponseWriter, v interface{}) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(bytes)
	return err
}

// pathID parses the named path variable as an integer.
func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
