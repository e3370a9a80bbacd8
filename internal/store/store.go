// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the finished output relations into a SQLite
// database, as an optional sink alongside the CSV tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/OrjadaShkoza/chembl-uniprot-drug-targets/pkg/types"
)

const listSeparator = ", "

// Store manages the results SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the results database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS drug_targets (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			drug_name TEXT NOT NULL,
			approval_year TEXT NOT NULL,
			targets TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS target_keywords (
			accession TEXT PRIMARY KEY,
			keywords TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun replaces the stored relations with the rows of one finished
// run, inside a single transaction so readers never observe a half
// written result set.
func (s *Store) SaveRun(ctx context.Context, drugRows []types.DrugTargetRow, keywordRows []types.TargetKeywordRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"drug_targets", "target_keywords"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, row := range drugRows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO drug_targets (drug_name, approval_year, targets) VALUES (?, ?, ?)`,
			row.DrugName, row.ApprovalYear, strings.Join(row.Targets, listSeparator))
		if err != nil {
			return fmt.Errorf("inserting drug row %s: %w", row.DrugName, err)
		}
	}

	for _, row := range keywordRows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO target_keywords (accession, keywords) VALUES (?, ?)`,
			row.Accession, strings.Join(row.Keywords, listSeparator))
		if err != nil {
			return fmt.Errorf("inserting keyword row %s: %w", row.Accession, err)
		}
	}

	return tx.Commit()
}

// CountRows returns the stored row counts per relation.
func (s *Store) CountRows(ctx context.Context) (drugRows, keywordRows int, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drug_targets`).Scan(&drugRows); err != nil {
		return 0, 0, fmt.Errorf("counting drug_targets: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM target_keywords`).Scan(&keywordRows); err != nil {
		return 0, 0, fmt.Errorf("counting target_keywords: %w", err)
	}
	return drugRows, keywordRows, nil
}
