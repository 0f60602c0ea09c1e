/*
Package sqlite provides the SQLite-backed implementation of the payroll
storage interfaces.

PURPOSE:
  Implements payrun.Store, ytd.Ledger, and payrun.AtomicApprover on one
  database so the approval boundary - status transition plus YTD commit -
  is a single SQL transaction.

KEY TABLES:
  payroll_runs:    Run aggregates with optimistic version column
  payroll_records: One row per employee per run; inputs/results as JSON
  ytd_ledger:      One row per employee-year of cumulative amounts
  ytd_commits:     One row per committed run - the commit-once guard

CONCURRENCY:
  Optimistic versioning on payroll_runs: UPDATE ... WHERE version = ?
  detects lost updates and surfaces payrun.ErrConcurrentModification.
  The ytd_commits primary key makes double-commit structurally impossible.

USAGE:
  st, err := sqlite.New("./data/payroll.db")
  if err != nil { ... }
  defer st.Close()
  engine := payrun.NewEngine(st, rules, st, source)

SEE ALSO:
  - payrun/store.go: Interface definitions
  - ytd/ledger.go: Ledger contract and invariants
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/maplepay/payroll-engine/payrun"
	"github.com/maplepay/payroll-engine/statutory"
	"github.com/maplepay/payroll-engine/ytd"
)

// Store implements payrun.Store, ytd.Ledger, and payrun.AtomicApprover.
type Store struct {
	db *sql.DB
}

// Interface conformance.
var (
	_ payrun.Store          = (*Store)(nil)
	_ payrun.AtomicApprover = (*Store)(nil)
	_ ytd.Ledger            = (*Store)(nil)
)

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection to :memory: is a separate database;
		// pin the pool to one connection.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payroll_runs (
		id TEXT PRIMARY KEY,
		pay_date TEXT NOT NULL UNIQUE,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		paystub_note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payroll_records (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES payroll_runs(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL,
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		is_modified INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON payroll_records(run_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_run_employee
		ON payroll_records(run_id, employee_id);

	-- Cumulative year-to-date position, advanced only by run commits.
	CREATE TABLE IF NOT EXISTS ytd_ledger (
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		gross TEXT NOT NULL,
		pensionable TEXT NOT NULL,
		insurable TEXT NOT NULL,
		cpp_base TEXT NOT NULL,
		cpp2 TEXT NOT NULL,
		ei TEXT NOT NULL,
		federal_tax TEXT NOT NULL,
		provincial_tax TEXT NOT NULL,
		PRIMARY KEY (employee_id, year)
	);

	-- Commit-once guard: a run id can only ever be inserted here once.
	CREATE TABLE IF NOT EXISTS ytd_commits (
		run_id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		committed_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const dateFormat = "2006-01-02"

// =============================================================================
// PAYRUN STORE
// =============================================================================

func (s *Store) CreateRun(ctx context.Context, run *payrun.PayrollRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payroll_runs (id, pay_date, period_start, period_end, status, version, paystub_note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		run.ID, run.PayDate.UTC().Format(dateFormat),
		run.PeriodStart.UTC().Format(dateFormat), run.PeriodEnd.UTC().Format(dateFormat),
		string(run.Status), run.PaystubNote,
		run.CreatedAt.UTC().Format(time.RFC3339), run.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("run for pay date %s exists: %w",
				run.PayDate.Format(dateFormat), payrun.ErrConcurrentModification)
		}
		return err
	}
	if err := insertRecords(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	run.Version = 0
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*payrun.PayrollRun, error) {
	return s.getRun(ctx, "id = ?", runID)
}

func (s *Store) GetRunByPayDate(ctx context.Context, payDate time.Time) (*payrun.PayrollRun, error) {
	return s.getRun(ctx, "pay_date = ?", payDate.UTC().Format(dateFormat))
}

func (s *Store) getRun(ctx context.Context, where string, arg any) (*payrun.PayrollRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, pay_date, period_start, period_end, status, version, paystub_note, created_at, updated_at
		FROM payroll_runs WHERE `+where, arg)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%v: %w", arg, payrun.ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, input_json, result_json, is_modified, created_at, updated_at
		FROM payroll_records WHERE run_id = ? ORDER BY employee_id`, run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows, run.ID)
		if err != nil {
			return nil, err
		}
		run.Records = append(run.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	run.Resum()
	return run, nil
}

func (s *Store) SaveRun(ctx context.Context, run *payrun.PayrollRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveRunTx(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	run.Version++
	return nil
}

// saveRunTx performs the optimistic-versioned update and record replace
// inside an existing transaction.
func saveRunTx(ctx context.Context, tx *sql.Tx, run *payrun.PayrollRun) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE payroll_runs
		SET status = ?, paystub_note = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		string(run.Status), run.PaystubNote, run.UpdatedAt.UTC().Format(time.RFC3339),
		run.ID, run.Version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing from stale.
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM payroll_runs WHERE id = ?`, run.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("run %s: %w", run.ID, payrun.ErrRunNotFound)
		}
		return fmt.Errorf("run %s version %d: %w", run.ID, run.Version, payrun.ErrConcurrentModification)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM payroll_records WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	return insertRecords(ctx, tx, run)
}

func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payroll_runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, payrun.ErrRunNotFound)
	}
	return nil
}

func (s *Store) ListRuns(ctx context.Context) ([]*payrun.PayrollRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM payroll_runs ORDER BY pay_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*payrun.PayrollRun, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, run *payrun.PayrollRun) error {
	for _, rec := range run.Records {
		inputJSON, err := json.Marshal(rec.Input)
		if err != nil {
			return err
		}
		resultJSON, err := json.Marshal(rec.Result)
		if err != nil {
			return err
		}
		modified := 0
		if rec.IsModified {
			modified = 1
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payroll_records (id, run_id, employee_id, input_json, result_json, is_modified, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, run.ID, rec.EmployeeID, string(inputJSON), string(resultJSON), modified,
			rec.CreatedAt.UTC().Format(time.RFC3339), rec.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRun(row rowScanner) (*payrun.PayrollRun, error) {
	var run payrun.PayrollRun
	var payDate, periodStart, periodEnd, status, createdAt, updatedAt string
	err := row.Scan(&run.ID, &payDate, &periodStart, &periodEnd, &status,
		&run.Version, &run.PaystubNote, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	run.Status = payrun.Status(status)
	if run.PayDate, err = time.Parse(dateFormat, payDate); err != nil {
		return nil, err
	}
	if run.PeriodStart, err = time.Parse(dateFormat, periodStart); err != nil {
		return nil, err
	}
	if run.PeriodEnd, err = time.Parse(dateFormat, periodEnd); err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRecord(rows *sql.Rows, runID string) (payrun.PayrollRecord, error) {
	var rec payrun.PayrollRecord
	var inputJSON, resultJSON, createdAt, updatedAt string
	var modified int
	err := rows.Scan(&rec.ID, &rec.EmployeeID, &inputJSON, &resultJSON, &modified, &createdAt, &updatedAt)
	if err != nil {
		return rec, err
	}
	rec.RunID = runID
	rec.IsModified = modified != 0
	if err := json.Unmarshal([]byte(inputJSON), &rec.Input); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return rec, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return rec, err
	}
	return rec, nil
}

// =============================================================================
// YTD LEDGER
// =============================================================================

func (s *Store) Get(ctx context.Context, employeeID string, year int) (statutory.YtdState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT gross, pensionable, insurable, cpp_base, cpp2, ei, federal_tax, provincial_tax
		FROM ytd_ledger WHERE employee_id = ? AND year = ?`, employeeID, year)
	state, err := scanYtd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return statutory.YtdState{}, nil // new year, zero state
	}
	return state, err
}

func (s *Store) CommitRun(ctx context.Context, runID string, year int, deltas map[string]statutory.YtdState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := commitRunTx(ctx, tx, runID, year, deltas); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Committed(ctx context.Context, runID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM ytd_commits WHERE run_id = ?`, runID).Scan(&n)
	return n > 0, err
}

// commitRunTx applies a run's deltas inside an existing transaction.
// The ytd_commits insert is the commit-once guard: a duplicate run id
// fails the whole transaction before any ledger row moves.
func commitRunTx(ctx context.Context, tx *sql.Tx, runID string, year int, deltas map[string]statutory.YtdState) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ytd_commits (run_id, year, committed_at) VALUES (?, ?, ?)`,
		runID, year, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("run %s: %w", runID, ytd.ErrAlreadyCommitted)
		}
		return err
	}

	for employeeID, delta := range deltas {
		if delta.IsNegative() {
			return fmt.Errorf("employee %s in run %s: %w", employeeID, runID, ytd.ErrNegativeDelta)
		}
		row := tx.QueryRowContext(ctx, `
			SELECT gross, pensionable, insurable, cpp_base, cpp2, ei, federal_tax, provincial_tax
			FROM ytd_ledger WHERE employee_id = ? AND year = ?`, employeeID, year)
		current, err := scanYtd(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		next := current.Add(delta)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ytd_ledger (employee_id, year, gross, pensionable, insurable, cpp_base, cpp2, ei, federal_tax, provincial_tax)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (employee_id, year) DO UPDATE SET
				gross = excluded.gross, pensionable = excluded.pensionable,
				insurable = excluded.insurable, cpp_base = excluded.cpp_base,
				cpp2 = excluded.cpp2, ei = excluded.ei,
				federal_tax = excluded.federal_tax, provincial_tax = excluded.provincial_tax`,
			employeeID, year,
			next.Gross.String(), next.PensionableEarnings.String(), next.InsurableEarnings.String(),
			next.CPPBase.String(), next.CPP2.String(), next.EI.String(),
			next.FederalTax.String(), next.ProvincialTax.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func scanYtd(row rowScanner) (statutory.YtdState, error) {
	var state statutory.YtdState
	var gross, pensionable, insurable, cppBase, cpp2, ei, fed, prov string
	if err := row.Scan(&gross, &pensionable, &insurable, &cppBase, &cpp2, &ei, &fed, &prov); err != nil {
		return state, err
	}
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&state.Gross, gross},
		{&state.PensionableEarnings, pensionable},
		{&state.InsurableEarnings, insurable},
		{&state.CPPBase, cppBase},
		{&state.CPP2, cpp2},
		{&state.EI, ei},
		{&state.FederalTax, fed},
		{&state.ProvincialTax, prov},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return state, fmt.Errorf("corrupt ledger amount %q: %w", f.src, err)
		}
		*f.dst = v
	}
	return state, nil
}

// =============================================================================
// ATOMIC APPROVAL
// =============================================================================

// ApproveAndCommit saves the approved run and commits its YTD deltas in a
// single SQL transaction: the status change and the ledger advance can
// never be separated by a crash or a concurrent writer.
func (s *Store) ApproveAndCommit(ctx context.Context, run *payrun.PayrollRun, year int, deltas map[string]statutory.YtdState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := commitRunTx(ctx, tx, run.ID, year, deltas); err != nil {
		return err
	}
	if err := saveRunTx(ctx, tx, run); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	run.Version++
	return nil
}
