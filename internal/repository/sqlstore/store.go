// Package sqlstore implements the repository interfaces on top of
// PostgreSQL and SQLite. Queries are written once with ? placeholders and
// rebound per driver, so both engines share the same code paths.
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names. DriverSQLite is what modernc.org/sqlite registers
// itself under.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// sqlx does not know the modernc driver name. Register its placeholder
	// style so Rebind is a deliberate no-op rather than a fallback.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config carries what Open needs to reach the database.
type Config struct {
	Driver  string
	DSN     string
	Timeout time.Duration
}

// Store owns the connection pool and hands out one repository per entity.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration

	Campaigns *CampaignRepo
	Vouchers  *VoucherRepo
	Referrals *ReferralRepo
	Rewards   *RewardRepo
	Wheel     *WheelRepo
}

// Open connects to the configured database, applies the schema and returns
// a ready Store.
func Open(cfg Config) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := cfg.DSN

	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// A single connection keeps :memory: databases alive across calls
		// and serializes writers, which sqlite wants anyway.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	return newStore(db, timeout), nil
}

func newStore(db *sqlx.DB, timeout time.Duration) *Store {
	s := &Store{db: db, timeout: timeout}
	s.Campaigns = &CampaignRepo{s}
	s.Vouchers = &VoucherRepo{s}
	s.Referrals = &ReferralRepo{s}
	s.Rewards = &RewardRepo{s}
	s.Wheel = &WheelRepo{s}
	return s
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// opCtx bounds a single store operation.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// sqliteDSN makes time.Time values round-trip through sqlite as text
// timestamps the driver can parse back.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if strings.Contains(dsn, "_time_format") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}
