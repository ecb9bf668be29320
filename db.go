package main

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationFiles embed.FS

const pqUniqueViolation = "23505"

func openDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", driver)
	}

	if driver == "sqlite3" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	return db, nil
}

// migrateUp applies the embedded migrations for the connection's driver.
func migrateUp(db *sqlx.DB, log logrus.FieldLogger) error {
	driverName := db.DriverName()

	src, err := iofs.New(migrationFiles, "migrations/"+driverName)
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}

	// both drivers' Close would close the shared pool, so m is never closed
	var m *migrate.Migrate
	switch driverName {
	case "sqlite3":
		driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
		if err != nil {
			return errors.Wrap(err, "creating sqlite3 migration driver")
		}
		m, err = migrate.NewWithInstance("iofs", src, driverName, driver)
		if err != nil {
			return errors.Wrap(err, "creating migration instance")
		}
	case "postgres":
		driver, err := migratepostgres.WithInstance(db.DB, &migratepostgres.Config{})
		if err != nil {
			return errors.Wrap(err, "creating postgres migration driver")
		}
		m, err = migrate.NewWithInstance("iofs", src, driverName, driver)
		if err != nil {
			return errors.Wrap(err, "creating migration instance")
		}
	default:
		return errors.Errorf("no migrations for driver %q", driverName)
	}

	err = m.Up()
	if err == migrate.ErrNoChange {
		log.Info("migration state is up to date")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "running migrations")
	}

	log.Info("ran migrations successfully")
	return nil
}

// isUniqueViolation reports whether err is a unique constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
