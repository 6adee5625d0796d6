package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDAL(t *testing.T) *DAL {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "dal.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db, SQLite))
	dal := New(db, SQLite, Options{Timeout: 5 * time.Second, RetryAttempts: 3, RetryBackoff: time.Millisecond})
	t.Cleanup(func() { dal.Close() })
	return dal
}

func TestDALReadWrite(t *testing.T) {
	ctx := context.Background()
	dal := newTestDAL(t)

	res, err := dal.Write(ctx, "INSERT INTO roles (user_id, role_name) VALUES (?, ?)", 1, "Hamlet")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Positive(t, res.LastInsertID)

	rows, err := dal.Read(ctx, "SELECT id, user_id, role_name FROM roles WHERE user_id = ?", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"id", "user_id", "role_name"}, rows[0].Columns())
	assert.Equal(t, uint64(res.LastInsertID), rows[0].Uint64("id"))
	assert.Equal(t, "Hamlet", rows[0].String("role_name"))

	t.Run("parameters are not interpolated", func(t *testing.T) {
		evil := "x'); DROP TABLE roles; --"
		_, err := dal.Write(ctx, "INSERT INTO roles (user_id, role_name) VALUES (?, ?)", 1, evil)
		require.NoError(t, err)
		rows, err := dal.Read(ctx, "SELECT role_name FROM roles WHERE role_name = ?", evil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, evil, rows[0].String("role_name"))
	})

	t.Run("unique violation is ErrDuplicate", func(t *testing.T) {
		_, err := dal.Write(ctx, "INSERT INTO roles (user_id, role_name) VALUES (?, ?)", 1, "Hamlet")
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("names compare case-sensitively", func(t *testing.T) {
		_, err := dal.Write(ctx, "INSERT INTO roles (user_id, role_name) VALUES (?, ?)", 1, "hamlet")
		assert.NoError(t, err)
	})
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	dal := newTestDAL(t)
	boom := errors.New("boom")

	err := dal.InTx(ctx, func(q Querier) error {
		if _, err := q.Write(ctx, "INSERT INTO scenes (user_id, scene_name) VALUES (?, ?)", 1, "Act I"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := dal.Read(ctx, "SELECT id FROM scenes")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInTxCommits(t *testing.T) {
	ctx := context.Background()
	dal := newTestDAL(t)

	err := dal.InTx(ctx, func(q Querier) error {
		res, err := q.Write(ctx, "INSERT INTO scenes (user_id, scene_name) VALUES (?, ?)", 1, "Act I")
		if err != nil {
			return err
		}
		rows, err := q.Read(ctx, "SELECT scene_name FROM scenes WHERE id = ?", res.LastInsertID)
		if err != nil {
			return err
		}
		if len(rows) != 1 {
			return fmt.Errorf("tx cannot see its own write")
		}
		return nil
	})
	require.NoError(t, err)

	rows, err := dal.Read(ctx, "SELECT id FROM scenes")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestInTxRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	dal := newTestDAL(t)

	t.Run("recovers", func(t *testing.T) {
		calls := 0
		err := dal.InTx(ctx, func(q Querier) error {
			calls++
			if calls < 3 {
				return fmt.Errorf("%w: lock wait", ErrUnavailable)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the bounded attempts", func(t *testing.T) {
		calls := 0
		err := dal.InTx(ctx, func(q Querier) error {
			calls++
			return fmt.Errorf("%w: lock wait", ErrUnavailable)
		})
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		err := dal.InTx(ctx, func(q Querier) error {
			calls++
			return ErrDuplicate
		})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := dal.InTx(cctx, func(q Querier) error {
			calls++
			cancel()
			return fmt.Errorf("%w: busy", ErrUnavailable)
		})
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, 1, calls)
	})
}

func TestReadTimesOutAsUnavailable(t *testing.T) {
	dal := newTestDAL(t)
	dal.opts.RetryAttempts = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dal.Read(ctx, "SELECT 1")
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	plain := errors.New("syntax error")

	tests := []struct {
		name        string
		err         error
		duplicate   bool
		unavailable bool
	}{
		{"nil", nil, false, false},
		{"plain", plain, false, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, false},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, false, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, false, true},
		{"mysql too many connections", &mysql.MySQLError{Number: 1040}, false, true},
		{"mysql other", &mysql.MySQLError{Number: 1146}, false, false},
		{"deadline", context.DeadlineExceeded, false, true},
		{"bad conn", driver.ErrBadConn, false, true},
		{"invalid conn", mysql.ErrInvalidConn, false, true},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.duplicate, errors.Is(got, ErrDuplicate))
			assert.Equal(t, tt.unavailable, errors.Is(got, ErrUnavailable))
			assert.ErrorIs(t, got, tt.err, "original error stays in the chain")
		})
	}
	assert.Same(t, plain, classify(plain))
}

func TestRowAccessors(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	row := NewRow(
		[]string{"id", "name", "bytes", "num", "missing", "at", "at_text"},
		[]any{int64(7), "Cloak", []byte("M"), "42", nil, ts, "2024-05-01 10:30:00"},
	)

	assert.Equal(t, 7, row.Len())
	assert.Equal(t, uint64(7), row.Uint64("id"))
	assert.Equal(t, "Cloak", row.String("name"))
	assert.Equal(t, "M", row.String("bytes"), "[]byte is normalized to string")
	assert.Equal(t, int64(42), row.Int64("num"))
	assert.True(t, row.IsNull("missing"))
	assert.True(t, row.IsNull("no_such_column"))
	assert.Nil(t, row.NullUint64("missing"))
	assert.Nil(t, row.NullString("missing"))
	assert.Equal(t, "", row.String("missing"))
	assert.Equal(t, ts, row.Time("at"))
	assert.Equal(t, ts, row.Time("at_text"))
	require.NotNil(t, row.NullTime("at"))

	m := row.Map()
	assert.Equal(t, "Cloak", m["name"])
}

func TestMigrateIsIdempotent(t *testing.T) {
	dal := newTestDAL(t)
	require.NoError(t, Migrate(context.Background(), dal.DB(), SQLite))
	assert.Equal(t, SQLite, dal.Dialect())
}
