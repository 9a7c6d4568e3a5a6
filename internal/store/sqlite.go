package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS device_state (
    device     TEXT PRIMARY KEY,
    animation  TEXT NOT NULL DEFAULT '',
    color      TEXT NOT NULL DEFAULT '',
    speed      INTEGER NOT NULL DEFAULT 0,
    effect     TEXT NOT NULL DEFAULT '',
    params     TEXT NOT NULL DEFAULT '{}',  -- effect params as json
    image      TEXT NOT NULL DEFAULT '',
    brightness INTEGER NOT NULL DEFAULT 255,
    updated    INTEGER NOT NULL             -- UnixNano
);
`

// SQLite stores one row per device.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mkdir for %s: %v: %w", path, err, errs.ErrIO)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, errs.ErrIO)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %v: %w", path, err, errs.ErrIO)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %v: %w", err, errs.ErrIO)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(device string) (Record, error) {
	var (
		r       = Record{Device: device}
		params  string
		speed   int
		bright  int
		updated int64
	)
	err := s.db.QueryRow(
		`SELECT animation, color, speed, effect, params, image, brightness, updated
		 FROM device_state WHERE device = ?`, device,
	).Scan(&r.Animation, &r.Color, &speed, &r.Effect.Name, &params, &r.Image, &bright, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("device %s: %w", device, errs.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %v: %w", device, err, errs.ErrIO)
	}
	if err := json.Unmarshal([]byte(params), &r.Effect.Params); err != nil {
		return Record{}, fmt.Errorf("effect params of %s: %v: %w", device, err, errs.ErrFormat)
	}
	if len(r.Effect.Params) == 0 {
		r.Effect.Params = nil
	}
	r.Speed = uint8(speed)
	r.Brightness = uint8(bright)
	r.Updated = time.Unix(0, updated)
	return r, nil
}

func (s *SQLite) Save(r Record) error {
	if err := validate(r); err != nil {
		return err
	}
	if r.Updated.IsZero() {
		r.Updated = time.Now()
	}
	params, err := json.Marshal(nonNil(r.Effect))
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO device_state (device, animation, color, speed, effect, params, image, brightness, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(device) DO UPDATE SET
		   animation = excluded.animation, color = excluded.color, speed = excluded.speed,
		   effect = excluded.effect, params = excluded.params, image = excluded.image,
		   brightness = excluded.brightness, updated = excluded.updated`,
		r.Device, r.Animation, r.Color, int(r.Speed), r.Effect.Name, string(params), r.Image,
		int(r.Brightness), r.Updated.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %v: %w", r.Device, err, errs.ErrIO)
	}
	return nil
}

// Devices lists the stored device names in order.
func (s *SQLite) Devices() ([]string, error) {
	rows, err := s.db.Query("SELECT device FROM device_state ORDER BY device")
	if err != nil {
		return nil, fmt.Errorf("list devices: %v: %w", err, errs.ErrIO)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

func nonNil(s effect.Spec) map[string]float64 {
	if s.Params == nil {
		return map[string]float64{}
	}
	return s.Params
}
