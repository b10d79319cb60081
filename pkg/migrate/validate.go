package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var migrationFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks that every .sql file in dir looks like a runnable goose
// migration: timestamped snake_case filename, unique version, and both Up and
// Down sections present. An empty dir is fine.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("glob %q: %w", dir, err)
	}

	versions := make(map[string]string, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		m := migrationFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, dup := versions[m[1]]; dup {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		versions[m[1]] = name

		if err := checkGooseSections(path); err != nil {
			return err
		}
	}
	return nil
}

func checkGooseSections(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %q: %w", path, err)
	}
	text := string(raw)
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(text, marker) {
			return fmt.Errorf("migration %q missing %q", filepath.Base(path), marker)
		}
	}
	return nil
}
