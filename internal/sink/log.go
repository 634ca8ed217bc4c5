package sink

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/hollowgrove/witherlocate/internal/obs"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS event_log (
	server       TEXT NOT NULL,
	x            REAL NOT NULL,
	y            REAL NOT NULL,
	z            REAL NOT NULL,
	ts           DATETIME NOT NULL,
	error_radius REAL
)`

const insertSQL = `
INSERT INTO event_log (server, x, y, z, ts, error_radius) VALUES (?, ?, ?, ?, ?, ?)`

// LogSink appends one row per sealed batch to a relational log table. It
// opens a single *sql.DB (the driver's own connection pool is shared and
// mutex-free, per spec), so LogSink itself carries no locking.
type LogSink struct {
	db *sql.DB
}

// NewLogSink opens driverName/dataSourceName (typically "sqlite3" and a file
// path) and ensures the event_log table exists.
func NewLogSink(driverName, dataSourceName string) (*LogSink, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, errors.Wrap(err, "sink: opening log database")
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sink: creating event_log table")
	}
	return &LogSink{db: db}, nil
}

// Write inserts one row per call and commits immediately (commit-per-batch,
// per spec); ordering across calls is the caller's responsibility since the
// log must preserve firstAt order.
func (s *LogSink) Write(ctx context.Context, est obs.EventEstimate) error {
	var errRadius sql.NullFloat64
	if !errInfinite(est.ErrorRadius) {
		errRadius = sql.NullFloat64{Float64: est.ErrorRadius, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, insertSQL,
		est.ServerLabel, est.X, est.Y, est.Z, est.FirstObservedAt, errRadius)
	if err != nil {
		return errors.Wrap(err, "sink: writing event_log row")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *LogSink) Close() error {
	return s.db.Close()
}

func errInfinite(f float64) bool {
	return f > 1e300 || f < -1e300
}
