package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// RunMigrations applies pending schema migrations from migrationsDir
// (a file:// URL) against the database. No pending changes is not an
// error.
func RunMigrations(migrationsDir, databaseURL string) error {
	logrus.Info("starting database migration")

	migration, err := migrate.New(migrationsDir, databaseURL)
	if err != nil {
		return err
	}

	if err := migration.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logrus.Info("database migration skipped as there are no changes")
			return nil
		}
		return err
	}

	logrus.Info("database migration performed successfully")
	return nil
}
