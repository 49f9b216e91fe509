package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/lokeshchintha/nearfind/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS searches (
	id         TEXT PRIMARY KEY,
	center_lat REAL NOT NULL,
	center_lng REAL NOT NULL,
	radius_km  REAL NOT NULL,
	live_count INTEGER NOT NULL DEFAULT 0,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	lat        REAL NOT NULL,
	lng        REAL NOT NULL,
	accuracy_m REAL,
	method     TEXT NOT NULL,
	city       TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS routes (
	id          TEXT PRIMARY KEY,
	start_lat   REAL NOT NULL,
	start_lng   REAL NOT NULL,
	end_label   TEXT NOT NULL,
	mode        TEXT NOT NULL,
	provider    TEXT NOT NULL,
	distance_km REAL NOT NULL,
	duration_m  REAL NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
CREATE INDEX IF NOT EXISTS idx_locations_created_at ON locations(created_at);
CREATE INDEX IF NOT EXISTS idx_routes_created_at ON routes(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordSearch(ctx context.Context, result *model.SearchResult) (*SearchRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal search result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (id, center_lat, center_lng, radius_km, live_count, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, result.Center.Lat, result.Center.Lng, result.RadiusKm, result.LiveCount, string(resultJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert search")
	}

	return &SearchRecord{ID: id, Result: *result, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, result, created_at FROM searches ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list searches")
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var resultJSON string
		if err := rows.Scan(&rec.ID, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search")
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal search result")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list searches iterate")
}

func (s *SQLiteStore) RecordLocation(ctx context.Context, fix *model.LocationFix) (*LocationRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, lat, lng, accuracy_m, method, city, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, fix.Coordinate.Lat, fix.Coordinate.Lng, fix.AccuracyMeters, string(fix.Method), fix.CityLabel, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert location")
	}

	return &LocationRecord{ID: id, Fix: *fix, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListLocations(ctx context.Context, limit int) ([]LocationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lat, lng, accuracy_m, method, city, created_at
		 FROM locations ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list locations")
	}
	defer rows.Close()

	var records []LocationRecord
	for rows.Next() {
		rec, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list locations iterate")
}

func (s *SQLiteStore) LatestLocation(ctx context.Context) (*LocationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lat, lng, accuracy_m, method, city, created_at
		 FROM locations ORDER BY created_at DESC LIMIT 1`,
	)
	rec, err := scanLocation(row)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) RecordRoute(ctx context.Context, start *model.LocationFix, endLabel string, route *model.RouteResult, mode model.TravelMode) (*RouteRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO routes (id, start_lat, start_lng, end_label, mode, provider, distance_km, duration_m, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, start.Coordinate.Lat, start.Coordinate.Lng, endLabel, string(mode),
		route.ProviderUsed, route.TotalDistanceKm, route.TotalDurationMinutes, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert route")
	}

	return &RouteRecord{
		ID:              id,
		Start:           *start,
		EndLabel:        endLabel,
		Mode:            mode,
		ProviderUsed:    route.ProviderUsed,
		TotalDistanceKm: route.TotalDistanceKm,
		DurationMinutes: route.TotalDurationMinutes,
		CreatedAt:       now,
	}, nil
}

func (s *SQLiteStore) ListRoutes(ctx context.Context, limit int) ([]RouteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_lat, start_lng, end_label, mode, provider, distance_km, duration_m, created_at
		 FROM routes ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list routes")
	}
	defer rows.Close()

	var records []RouteRecord
	for rows.Next() {
		var rec RouteRecord
		var mode, provider string
		if err := rows.Scan(&rec.ID, &rec.Start.Coordinate.Lat, &rec.Start.Coordinate.Lng,
			&rec.EndLabel, &mode, &provider, &rec.TotalDistanceKm, &rec.DurationMinutes, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan route")
		}
		rec.Mode = model.TravelMode(mode)
		rec.ProviderUsed = provider
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list routes iterate")
}

// Prune drops all but the newest keep rows from every table and reports how
// many rows were removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	total := 0
	for _, table := range []string{"searches", "locations", "routes"} {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE id NOT IN (
				SELECT id FROM `+table+` ORDER BY created_at DESC LIMIT ?
			)`, keep,
		)
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: prune %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "sqlite: prune rows affected")
		}
		total += int(n)
	}
	return total, nil
}

// helpers

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLocation(row scannable) (*LocationRecord, error) {
	var rec LocationRecord
	var accuracy sql.NullFloat64
	var method string
	var city sql.NullString

	err := row.Scan(&rec.ID, &rec.Fix.Coordinate.Lat, &rec.Fix.Coordinate.Lng,
		&accuracy, &method, &city, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrap(err, "sqlite: no locations")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan location")
	}

	rec.Fix.Method = model.AcquisitionMethod(method)
	if accuracy.Valid {
		rec.Fix.AccuracyMeters = accuracy.Float64
	}
	if city.Valid {
		rec.Fix.CityLabel = city.String
	}
	return &rec, nil
}
