package paramsprovider

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a local, migration-managed sqlite cache of fetched parameter
// versions, so a caller without network access can still reuse the last
// set it saw.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if absent) a sqlite database at dbPath and
// applies any pending schema migrations. dbPath may be ":memory:".
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateSchema(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Put persists a VersionedParams value, keyed by its own Version field.
func (s *Store) Put(params *VersionedParams, fetchedAt time.Time) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO cached_params (version, payload, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(version) DO UPDATE SET
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at`,
		params.Version, payload, fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("caching params version %d: %w", params.Version, err)
	}

	return nil
}

// Latest returns the highest-versioned entry in the store, or
// (nil, false) if the store is empty.
func (s *Store) Latest() (*VersionedParams, bool, error) {
	row := s.db.QueryRow(
		`SELECT payload FROM cached_params ORDER BY version DESC LIMIT 1`,
	)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cached params: %w", err)
	}

	var params VersionedParams
	if err := json.Unmarshal(payload, &params); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cached params: %w", err)
	}

	return &params, true, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
