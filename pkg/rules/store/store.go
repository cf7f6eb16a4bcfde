package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/gatekeep/pkg/config"
)

// Driver names accepted by Open.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// Version is one activated rules configuration.
type Version struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Checksum  string    `json:"checksum"`
	Revision  string    `json:"revision"`
	Source    string    `json:"source"`
	Format    string    `json:"format"`
	RuleCount int       `json:"rule_count"`
	Body      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Options configures Open.
type Options struct {
	// Driver is "sqlite" or "sqlite3". Default: "sqlite".
	Driver string

	// Path is the database file. Parent directories are created.
	Path string

	// BusyTimeout is how long to wait for locks. Default: 5s.
	BusyTimeout time.Duration

	Logger *slog.Logger
}

// OptionsFromConfig maps the store section of the configuration.
func OptionsFromConfig(cfg config.StoreConfig, logger *slog.Logger) Options {
	return Options{
		Driver: cfg.Driver,
		Path:   cfg.Path,
		Logger: logger,
	}
}

// Store is a SQLite-backed rules history.
type Store struct {
	db     *sql.DB
	driver string
	path   string
	logger *slog.Logger
	now    func() time.Time

	// mu serializes Save so the dedup check and the insert are atomic.
	mu sync.Mutex
}

// Open opens or creates the database and applies the schema.
func Open(opts Options) (*Store, error) {
	if opts.Driver == "" {
		opts.Driver = DriverModernc
	}
	if opts.Driver != DriverModernc && opts.Driver != DriverCgo {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger.With("component", "rules.store")

	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, newStorageError(opts.Driver, "mkdir", err)
		}
	}

	db, err := sql.Open(opts.Driver, opts.Path)
	if err != nil {
		return nil, newStorageError(opts.Driver, "open", err)
	}

	// SQLite only supports a single writer. One connection also keeps the
	// per-connection pragmas below in force.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		driver: opts.Driver,
		path:   opts.Path,
		logger: logger,
		now:    time.Now,
	}

	if err := s.initialize(opts.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("rules store opened", "driver", opts.Driver, "path", opts.Path)
	return s, nil
}

func (s *Store) initialize(busyTimeout time.Duration) error {
	if s.path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError(s.driver, "enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return newStorageError(s.driver, "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError(s.driver, "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().Unix()); err != nil {
		return newStorageError(s.driver, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStorageError(s.driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Save appends v unless its checksum equals the latest row. It returns the
// stored row and whether a new row was written. ID and CreatedAt are
// assigned when empty.
func (s *Store) Save(ctx context.Context, v Version) (*Version, bool, error) {
	if v.Checksum == "" {
		return nil, false, fmt.Errorf("checksum cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.Latest(ctx)
	switch {
	case err == nil && latest.Checksum == v.Checksum:
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules_versions (id, version, checksum, revision, source, format, rule_count, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Version, v.Checksum, v.Revision, v.Source, v.Format, v.RuleCount, v.Body, v.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, false, newStorageError(s.driver, "save", err)
	}

	s.logger.Debug("rules version saved",
		"id", v.ID,
		"version", v.Version,
		"revision", v.Revision,
	)
	return &v, true, nil
}

// Latest returns the newest version including its body.
func (s *Store) Latest(ctx context.Context) (*Version, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`, body FROM rules_versions`+orderNewest+` LIMIT 1`)
	v, err := scanVersion(row, true)
	if err != nil {
		return nil, s.wrapQueryErr("latest", err)
	}
	return v, nil
}

// Get returns the version with the given ID including its body.
func (s *Store) Get(ctx context.Context, id string) (*Version, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`, body FROM rules_versions WHERE id = ?`, id)
	v, err := scanVersion(row, true)
	if err != nil {
		return nil, s.wrapQueryErr("get", err)
	}
	return v, nil
}

// List returns up to limit versions, newest first, without bodies. A limit
// of zero or less returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Version, error) {
	query := selectColumns + ` FROM rules_versions` + orderNewest
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	versions := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows, false)
		if err != nil {
			return nil, newStorageError(s.driver, "list_scan", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(s.driver, "list_rows", err)
	}
	return versions, nil
}

// Count returns the number of stored versions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules_versions`).Scan(&n); err != nil {
		return 0, newStorageError(s.driver, "count", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep versions and returns the number
// deleted. keep must be positive.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive, got %d", keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM rules_versions WHERE id NOT IN (
			SELECT id FROM rules_versions`+orderNewest+` LIMIT ?
		)`, keep)
	if err != nil {
		return 0, newStorageError(s.driver, "prune", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError(s.driver, "prune_rows_affected", err)
	}
	return deleted, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStorageError(s.driver, "ping", err)
	}
	return nil
}

// Driver returns the SQL driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) wrapQueryErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return newStorageError(s.driver, op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(row scanner, withBody bool) (*Version, error) {
	var v Version
	var created int64
	dest := []any{&v.ID, &v.Version, &v.Checksum, &v.Revision, &v.Source, &v.Format, &v.RuleCount, &created}
	if withBody {
		dest = append(dest, &v.Body)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	v.CreatedAt = time.Unix(0, created)
	return &v, nil
}
