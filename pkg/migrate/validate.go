package migrate

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

// Validate checks migration files for common problems without touching the DB.
func Validate(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("collect migrations: %w", err)
	}
	if len(migrations) == 0 {
		return fmt.Errorf("no migrations found in %s", dir)
	}

	seen := make(map[int64]string, len(migrations))
	for _, m := range migrations {
		if prev, ok := seen[m.Version]; ok {
			return fmt.Errorf("duplicate migration version %d (%s and %s)", m.Version, prev, m.Source)
		}
		seen[m.Version] = m.Source
	}
	return nil
}
