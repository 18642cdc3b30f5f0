package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// TestRow is one generated test as recorded for a spec file.
type TestRow struct {
	Spec  string
	Scope string // scope path joined with "/"
	Name  string
	Async bool
	Line  int
}

// SpecState returns the source hash and output path recorded for a spec
// file. found is false when the file has never been generated.
func SpecState(db *sql.DB, path string) (hash, output string, found bool, err error) {
	err = db.QueryRow(`SELECT source_hash, output_path FROM specs WHERE file_path = ?`, path).Scan(&hash, &output)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("querying %s: %w", path, err)
	}
	return hash, output, true, nil
}

// RecordSpec stores the result of generating a spec file, replacing the
// tests recorded by any earlier run.
func RecordSpec(db *sql.DB, path, hash, output string, tests []TestRow) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning record of %s: %w", path, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO specs (file_path, source_hash, output_path) VALUES (?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			source_hash = excluded.source_hash,
			output_path = excluded.output_path,
			updated_at = datetime('now')
	`, path, hash, output)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", path, err)
	}

	var specID int64
	if err := tx.QueryRow(`SELECT id FROM specs WHERE file_path = ?`, path).Scan(&specID); err != nil {
		return fmt.Errorf("reading id of %s: %w", path, err)
	}

	if _, err := tx.Exec(`DELETE FROM tests WHERE spec_id = ?`, specID); err != nil {
		return fmt.Errorf("clearing tests of %s: %w", path, err)
	}
	for _, t := range tests {
		_, err := tx.Exec(`INSERT INTO tests (spec_id, scope, name, async, line) VALUES (?, ?, ?, ?, ?)`,
			specID, t.Scope, t.Name, t.Async, t.Line)
		if err != nil {
			return fmt.Errorf("inserting test %s: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

// ListTests returns every recorded test ordered by spec file and position.
func ListTests(db *sql.DB) ([]TestRow, error) {
	rows, err := db.Query(`
		SELECT s.file_path, t.scope, t.name, t.async, t.line
		FROM tests t
		JOIN specs s ON t.spec_id = s.id
		ORDER BY s.file_path, t.line, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tests: %w", err)
	}
	defer rows.Close()

	var out []TestRow
	for rows.Next() {
		var r TestRow
		if err := rows.Scan(&r.Spec, &r.Scope, &r.Name, &r.Async, &r.Line); err != nil {
			return nil, fmt.Errorf("scanning test row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
