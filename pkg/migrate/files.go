package migrate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

//go:embed migrations/*.sql
var embedded embed.FS

var (
	fileNameRe  = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	nameCleanRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// File is one goose SQL migration.
type File struct {
	Version int64
	Name    string
	Path    string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Scan lists the SQL migrations at the root of fsys ordered by version. It
// rejects bad file names, duplicate versions and files missing either goose
// section.
func Scan(fsys fs.FS) ([]File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	files := make([]File, 0, len(entries))
	byVersion := map[int64]string{}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		file, err := parseFileName(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := byVersion[file.Version]; ok {
			return nil, fmt.Errorf("migrations %q and %q share version %d", prev, file.Path, file.Version)
		}
		byVersion[file.Version] = file.Path

		body, err := fs.ReadFile(fsys, file.Path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", file.Path, err)
		}
		for _, section := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(body), section) {
				return nil, fmt.Errorf("migration %q has no %q section", file.Path, section)
			}
		}
		files = append(files, file)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir runs Scan against a directory on disk.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("migrations dir is required")
	}
	_, err := Scan(os.DirFS(dir))
	return err
}

// CreateSQLMigration writes an empty goose migration named after name into
// dir. The version is now (UTC), pushed past the newest existing version so
// files always sort after what is already there.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	slug := strings.Trim(nameCleanRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %q: %w", dir, err)
	}

	existing, err := Scan(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	version := now.UTC()
	if n := len(existing); n > 0 {
		latest, err := time.Parse(versionLayout, strconv.FormatInt(existing[n-1].Version, 10))
		if err == nil && !version.After(latest) {
			version = latest.Add(time.Second)
		}
	}

	target := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version.Format(versionLayout), slug))
	body := "-- +goose Up\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n\n-- +goose StatementEnd\n"
	if err := os.WriteFile(target, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("writing %q: %w", target, err)
	}
	return target, nil
}

func parseFileName(name string) (File, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return File{}, fmt.Errorf("migration %q must be named YYYYMMDDHHMMSS_snake_name.sql", name)
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return File{}, fmt.Errorf("migration %q: %w", name, err)
	}
	return File{Version: version, Name: m[2], Path: name}, nil
}
