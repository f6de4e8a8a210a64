package report_emitter

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE scan_runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    total_files INTEGER NOT NULL,
    projects_scanned INTEGER NOT NULL
);

CREATE TABLE roots (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    path TEXT NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (run_id, position),
    FOREIGN KEY (run_id) REFERENCES scan_runs(id)
);

CREATE TABLE files (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    record_id TEXT NOT NULL,
    absolute_path TEXT NOT NULL,
    relative_path TEXT NOT NULL,
    name TEXT NOT NULL,
    extension TEXT NOT NULL,
    parent_directory TEXT NOT NULL,
    size_bytes INTEGER NOT NULL,
    modified_time TIMESTAMP NOT NULL,
    project_label TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES scan_runs(id)
);
CREATE INDEX idx_files_project ON files(project_label);
CREATE INDEX idx_files_extension ON files(extension);
`

// ExportSQLite writes doc into a fresh SQLite database at path, replacing any
// file already there.
func ExportSQLite(ctx context.Context, path string, doc *Document) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	info := doc.ScanInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_runs (id, started_at, total_files, projects_scanned) VALUES (?, ?, ?, ?)`,
		info.RunID, info.Timestamp.UTC().Format(time.RFC3339Nano), info.TotalFiles, info.ProjectsScanned,
	); err != nil {
		return fmt.Errorf("failed to insert scan run: %w", err)
	}

	for i, p := range info.Projects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roots (run_id, position, path, label) VALUES (?, ?, ?, ?)`,
			info.RunID, i, p.Path, p.Name,
		); err != nil {
			return fmt.Errorf("failed to insert root %s: %w", p.Path, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (run_id, record_id, absolute_path, relative_path, name, extension,
			parent_directory, size_bytes, modified_time, project_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range doc.Files {
		if _, err := stmt.ExecContext(ctx,
			info.RunID, f.ID, f.AbsolutePath, f.RelativePath, f.Name, f.Extension,
			f.ParentDirectory, f.SizeBytes, f.ModifiedTime.UTC().Format(time.RFC3339Nano), f.ProjectLabel,
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", f.AbsolutePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}
