// Package apdb is the sqlite-backed store of known access point records. The
// positioning core only ever reads from it; writes exist for import tooling
// and tests. Schema changes ship as embedded migrations applied on open.
package apdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path and applies pending migrations.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("apdb: open %s: %w", path, err)
	}
	if strings.Contains(path, ":memory:") {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const apColumns = `mac_addr, version, latitude, longitude, altitude,
	horizontal_accuracy, vertical_accuracy, confidence, ssid, frequency,
	vendor, status, geohash`

// GetByMACs returns the records for the given MAC addresses, in no particular
// order. Unknown MACs are simply absent from the result.
func (s *Store) GetByMACs(ctx context.Context, macs []string) ([]positioning.AccessPoint, error) {
	if len(macs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(macs)), ",")
	args := make([]any, len(macs))
	for i, m := range macs {
		args[i] = m
	}

	query := fmt.Sprintf(`SELECT %s FROM access_points WHERE mac_addr IN (%s)`, apColumns, placeholders)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("apdb: query by macs: %w", err)
	}
	defer rows.Close()

	var out []positioning.AccessPoint
	for rows.Next() {
		ap, err := scanAccessPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ap)
	}
	return out, rows.Err()
}

// Get returns a single record, or (nil, nil) when the MAC is unknown.
func (s *Store) Get(ctx context.Context, mac string) (*positioning.AccessPoint, error) {
	aps, err := s.GetByMACs(ctx, []string{mac})
	if err != nil {
		return nil, err
	}
	if len(aps) == 0 {
		return nil, nil
	}
	return &aps[0], nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, ap positioning.AccessPoint) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT OR REPLACE INTO access_points (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, apColumns),
		ap.MACAddress, ap.Version, ap.Latitude, ap.Longitude, ap.Altitude,
		ap.HorizontalAccuracy, ap.VerticalAccuracy, ap.Confidence, ap.SSID,
		ap.Frequency, ap.Vendor, ap.Status, ap.Geohash)
	if err != nil {
		return fmt.Errorf("apdb: put %s: %w", ap.MACAddress, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_points`).Scan(&n); err != nil {
		return 0, fmt.Errorf("apdb: count: %w", err)
	}
	return n, nil
}

func scanAccessPoint(rows *sql.Rows) (positioning.AccessPoint, error) {
	var ap positioning.AccessPoint
	var version, ssid, vendor, geohash sql.NullString
	var altitude, verticalAccuracy sql.NullFloat64
	var frequency sql.NullInt64

	err := rows.Scan(&ap.MACAddress, &version, &ap.Latitude, &ap.Longitude,
		&altitude, &ap.HorizontalAccuracy, &verticalAccuracy, &ap.Confidence,
		&ssid, &frequency, &vendor, &ap.Status, &geohash)
	if err != nil {
		return ap, fmt.Errorf("apdb: scan row: %w", err)
	}

	ap.Version = version.String
	ap.SSID = ssid.String
	ap.Vendor = vendor.String
	ap.Geohash = geohash.String
	if altitude.Valid {
		v := altitude.Float64
		ap.Altitude = &v
	}
	if verticalAccuracy.Valid {
		v := verticalAccuracy.Float64
		ap.VerticalAccuracy = &v
	}
	ap.Frequency = int(frequency.Int64)
	return ap, nil
}
