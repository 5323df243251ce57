package sql

import (
	"context"
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Migrator interface {
	MigrateUp(ctx context.Context) error
	MigrateDown(ctx context.Context) error
	MigrateVersion(ctx context.Context) (version uint, dirty bool, err error)
}

// migrator runs fx against the embedded migrations over a dedicated
// connection, so closing the migration does not close the pool.
func (s *mySql) migrator(fx func(m *migrate.Migrate) error) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "error while reading migrations")
	}
	db, err := sql.Open("mysql", s.dataSourceName(true))
	if err != nil {
		return errors.Wrap(err, "error while opening sql for migrations")
	}
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		_ = db.Close()
		return errors.Wrap(err, "error while creating migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		_ = driver.Close()
		return errors.Wrap(err, "error while creating migration")
	}
	defer func() {
		if errSource, errDatabase := m.Close(); errSource != nil || errDatabase != nil {
			s.Error(context.Background(), "error while closing migration: %v, %v",
				errSource, errDatabase)
		}
	}()
	return fx(m)
}

func (s *mySql) MigrateUp(ctx context.Context) error {
	return s.migrator(func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "error while migrating up")
		}
		s.Info(ctx, "migrated up")
		return nil
	})
}

func (s *mySql) MigrateDown(ctx context.Context) error {
	return s.migrator(func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "error while migrating down")
		}
		s.Info(ctx, "migrated down")
		return nil
	})
}

func (s *mySql) MigrateVersion(ctx context.Context) (uint, bool, error) {
	var version uint
	var dirty bool

	err := s.migrator(func(m *migrate.Migrate) error {
		var err error

		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}
