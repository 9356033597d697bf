// Copyright 2026 The go-tek Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package catalog records decoded waveform captures in the capture
// database.
package catalog // import "github.com/go-tek/scope/catalog"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to record decoded captures in the
// capture database and retrieve them.
type DB struct {
	db   *sql.DB
	name string // name of the capture database
}

// Open opens a connection to the capture database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("catalog: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("catalog: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	// parseTime: trigger timestamps scan as time.Time, not []byte.
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("catalog: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// AddCapture records a decoded capture in the catalog.
func (db *DB) AddCapture(ctx context.Context, c Capture) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		`INSERT INTO captures (
	path, version, byte_order, frames, samples, bps,
	vscale, voffset, tstart, tscale, trigger_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Path, c.Version, c.Order, c.Frames, c.Samples, c.BPS,
		c.VScale, c.VOffset, c.TStart, c.TScale, c.Trigger,
	)
	if err != nil {
		return fmt.Errorf("catalog: could not insert capture %q: %w", c.Path, err)
	}

	return nil
}

const captureCols = "id, path, version, byte_order, frames, samples, bps, vscale, voffset, tstart, tscale, trigger_date"

// Captures returns all recorded captures, oldest first.
func (db *DB) Captures(ctx context.Context) ([]Capture, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cs []Capture
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT "+captureCols+" FROM captures ORDER BY id",
	)
	if err != nil {
		return cs, fmt.Errorf("catalog: could not query captures: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var c Capture
		err = c.scan(rows)
		if err != nil {
			return cs, fmt.Errorf("catalog: could not scan capture row %d: %w", i, err)
		}
		i++

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return cs, fmt.Errorf("catalog: could not scan db for captures: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return cs, fmt.Errorf("catalog: context error while retrieving captures: %w", err)
	}

	return cs, nil
}

// LastCapture returns the most recently recorded capture.
func (db *DB) LastCapture(ctx context.Context) (Capture, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Capture
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT "+captureCols+" FROM captures ORDER BY id DESC LIMIT 1",
	)
	if err != nil {
		return c, fmt.Errorf("catalog: could not query last capture: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = c.scan(rows)
		if err != nil {
			return c, fmt.Errorf("catalog: could not scan last capture: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("catalog: could not scan db for last capture: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return c, fmt.Errorf("catalog: context error while retrieving last capture: %w", err)
	}

	return c, nil
}
