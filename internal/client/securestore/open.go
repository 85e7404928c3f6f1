package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/pudo/internal/client/migrations"
	"github.com/dmitrijs2005/pudo/internal/common"
	"github.com/dmitrijs2005/pudo/internal/cryptox"
	"github.com/dmitrijs2005/pudo/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded schema to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the store database at path, migrates it and
// loads the device key from path+".key", generating one on first use.
// The returned close function releases the database.
func Open(ctx context.Context, path string) (*SQLiteStore, func() error, error) {
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, err
	}

	key, err := loadOrCreateKey(path + ".key")
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return NewSQLiteStore(db, key), db.Close, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != cryptox.KeySize {
			return nil, fmt.Errorf("device key %s: unexpected length %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read device key: %w", err)
	}

	key = common.GenerateRandByteArray(cryptox.KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}
	return key, nil
}
