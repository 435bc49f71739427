package migrate

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

// Create scaffolds a new SQL migration file in the migrations directory.
func Create(dir string, name string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("goose create: %w", err)
	}
	return nil
}
