package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const migrationTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration skeleton named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql and returns its path.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q is empty after sanitizing", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	stamp := time.Now().UTC().Format("20060102150405")
	path := filepath.Join(dir, stamp+"_"+slug+".sql")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("migration already exists: %s", path)
	}

	if err := os.WriteFile(path, fmt.Appendf(nil, migrationTemplate, slug), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// slugify lowercases the name and collapses anything outside [a-z0-9] into
// single underscores.
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
