package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/theatre-production/internal/metrics"
)

// WriteResult is what a write statement reports back: the id of a newly
// inserted row (when the statement inserted one) and the number of rows
// affected.
type WriteResult struct {
	LastInsertID int64
	RowsAffected int64
}

// Querier is the data access contract the repositories are written
// against. Parameters are always positional ("?"), never interpolated.
type Querier interface {
	Read(ctx context.Context, query string, args ...any) ([]Row, error)
	Write(ctx context.Context, stmt string, args ...any) (WriteResult, error)
}

// Options bound every call made through a DAL.
type Options struct {
	Timeout       time.Duration // per statement, or per transaction for InTx
	RetryAttempts int           // attempts for transient failures, including the first
	RetryBackoff  time.Duration // initial backoff, doubled after each failure
}

// DAL executes parameterized statements against a *sql.DB with a bounded
// timeout and translated errors. Reads and whole transactions are retried
// on transient failures; standalone writes are not, since a timed out
// write may already have been applied.
type DAL struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
}

var _ Querier = (*DAL)(nil)

// New wraps db. Zero options fall back to a 5s timeout and 3 attempts.
func New(db *sql.DB, dialect Dialect, opts Options) *DAL {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 100 * time.Millisecond
	}
	return &DAL{db: db, dialect: dialect, opts: opts}
}

// DB returns the underlying handle.
func (d *DAL) DB() *sql.DB { return d.db }

// Dialect returns the SQL flavour of the underlying store.
func (d *DAL) Dialect() Dialect { return d.dialect }

// Close closes the underlying handle.
func (d *DAL) Close() error { return d.db.Close() }

// Read runs a query and returns every row.
func (d *DAL) Read(ctx context.Context, query string, args ...any) ([]Row, error) {
	var out []Row
	err := d.retry(ctx, "read", func() error {
		qctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
		rows, err := readRows(qctx, d.db, query, args...)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// Write runs a statement once under the timeout.
func (d *DAL) Write(ctx context.Context, stmt string, args ...any) (WriteResult, error) {
	wctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	return execStmt(wctx, d.db, stmt, args...)
}

// InTx runs fn inside one transaction. fn must only use the Querier it is
// given. The transaction commits when fn returns nil and rolls back
// otherwise; a transient failure anywhere reruns the whole transaction.
func (d *DAL) InTx(ctx context.Context, fn func(q Querier) error) error {
	return d.retry(ctx, "tx", func() error {
		tctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()

		tx, err := d.db.BeginTx(tctx, d.txOptions())
		if err != nil {
			return classify(err)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		if err := fn(txQuerier{tx: tx}); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return classify(err)
		}
		committed = true
		return nil
	})
}

// txOptions asks MySQL for read committed. SQLite transactions are
// serializable and the driver rejects explicit levels.
func (d *DAL) txOptions() *sql.TxOptions {
	if d.dialect == MySQL {
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return nil
}

func (d *DAL) retry(ctx context.Context, op string, fn func() error) error {
	backoff := d.opts.RetryBackoff
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, ErrUnavailable) || attempt >= d.opts.RetryAttempts {
			return err
		}
		metrics.StoreRetries.WithLabelValues(op).Inc()
		slog.Warn("transient store error; retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

type txQuerier struct{ tx *sql.Tx }

func (q txQuerier) Read(ctx context.Context, query string, args ...any) ([]Row, error) {
	return readRows(ctx, q.tx, query, args...)
}

func (q txQuerier) Write(ctx context.Context, stmt string, args ...any) (WriteResult, error) {
	return execStmt(ctx, q.tx, stmt, args...)
}

// conn is satisfied by both *sql.DB and *sql.Tx.
type conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func readRows(ctx context.Context, c conn, query string, args ...any) ([]Row, error) {
	rows, err := c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err)
		}
		out = append(out, NewRow(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func execStmt(ctx context.Context, c conn, stmt string, args ...any) (WriteResult, error) {
	res, err := c.ExecContext(ctx, stmt, args...)
	if err != nil {
		return WriteResult{}, classify(err)
	}
	var wr WriteResult
	if wr.RowsAffected, err = res.RowsAffected(); err != nil {
		return WriteResult{}, fmt.Errorf("rows affected: %w", err)
	}
	// Not every driver reports an insert id for UPDATE/DELETE.
	if id, err := res.LastInsertId(); err == nil {
		wr.LastInsertID = id
	}
	return wr, nil
}
