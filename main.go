package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func setupRouter(s *server, m *metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(instrument(s.log, m))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	}).Methods("GET")
	r.Handle("/metrics", m.handler()).Methods("GET")

	r.HandleFunc("/register", s.registerHandler).Methods("POST")
	r.HandleFunc("/login", s.loginHandler).Methods("POST")

	r.HandleFunc("/messages", s.postMessageHandler).Methods("POST")
	r.HandleFunc("/messages", s.getMessagesHandler).Methods("GET")
	r.HandleFunc("/messages/{messageId}", s.getMessageHandler).Methods("GET")
	r.HandleFunc("/messages/{messageId}", s.deleteMessageHandler).Methods("DELETE")
	r.HandleFunc("/messages/{messageId}", s.updateMessageHandler).Methods("PATCH")

	r.HandleFunc("/accounts/{accountId}/messages", s.accountMessagesHandler).Methods("GET")

	return r
}

// buildServer wires the stores and hasher over an open database.
func buildServer(db *sqlx.DB, cfg *Config, log logrus.FieldLogger) (*server, error) {
	hasher, err := newPasswordHasher(cfg.PasswordHashing)
	if err != nil {
		return nil, err
	}
	return newServer(newAccountStore(db), newMessageStore(db), hasher, log), nil
}

func main() {
	dump := flag.Bool("dump", false, "print all messages as CSV and exit")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, dumpDoc) }
	flag.Parse()

	cfg := loadConfig()
	log := newLogger(cfg.LogLevel, cfg.isProduction())

	db, err := openDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("error initializing database")
	}
	defer db.Close()
	log.WithField("driver", cfg.DBDriver).Info("connected to database")

	if cfg.AutoMigrate {
		if err := migrateUp(db, log); err != nil {
			log.WithError(err).Fatal("error running migrations")
		}
	}

	s, err := buildServer(db, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("error configuring server")
	}

	if *dump {
		if err := dumpMessages(context.Background(), os.Stdout, s.messages); err != nil {
			log.WithError(err).Fatal("error dumping messages")
		}
		return
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(s, newMetrics()),
	}

	go func() {
		log.Infof("listening on http://localhost:%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}
