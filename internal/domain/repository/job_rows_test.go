package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"graphboard/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJobs_NullAndEmpty(t *testing.T) {
	for _, raw := range []sql.NullString{{}, {Valid: true, String: ""}, {Valid: true, String: "[]"}} {
		jobs, err := decodeJobs("jobs", raw)
		require.NoError(t, err)
		assert.NotNil(t, jobs)
		assert.Empty(t, jobs)
	}
}

func TestDecodeJobs_NullPayloadIsJSONNull(t *testing.T) {
	raw := `[{"id":1,"task_identifier":"t","payload":null,"priority":0,"run_at":"2024-01-02T03:04:05.123456+00:00",` +
		`"attempts":0,"max_attempts":25,"created_at":"2024-01-02T03:04:05+00:00","updated_at":"2024-01-02T03:04:05+00:00","revision":3}]`

	jobs, err := decodeJobs("jobs", sql.NullString{Valid: true, String: raw})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "null", string(jobs[0].Payload))
	assert.Equal(t, int32(3), jobs[0].Revision)
	assert.Equal(t, 123456000, jobs[0].RunAt.Nanosecond())
}

func TestJobRecord_ToModel_FirstMissingField(t *testing.T) {
	id := int64(1)
	name := "t"
	rec := jobRecord{ID: &id, TaskIdentifier: &name}

	_, err := rec.toModel()
	var mapErr *common.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "priority", mapErr.Field)

	_, err = (&jobRecord{}).toModel()
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "id", mapErr.Field)
}

func TestFailingColumn(t *testing.T) {
	cols := []string{"id", "run_at"}
	err := errors.New(`sql: Scan error on column index 1, name "run_at": unsupported Scan`)
	assert.Equal(t, "run_at", failingColumn(err, cols))
	assert.Equal(t, "", failingColumn(errors.New("boom"), cols))
}

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind common.PoolErrorKind
		wantPool bool
	}{
		{"deadline", context.DeadlineExceeded, common.PoolTimeout, true},
		{"wrapped deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), common.PoolTimeout, true},
		{"conn done", sql.ErrConnDone, common.PoolClosed, true},
		{"db closed", errors.New("sql: database is closed"), common.PoolClosed, true},
		{"bad conn", driver.ErrBadConn, common.PoolBackend, true},
		{"query error", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyDBError("op", tt.err)
			require.Error(t, err)

			var poolErr *common.PoolError
			if !tt.wantPool {
				assert.False(t, errors.As(err, &poolErr))
				assert.ErrorIs(t, err, tt.err)
				assert.Contains(t, err.Error(), "op: ")
				return
			}
			require.ErrorAs(t, err, &poolErr)
			assert.Equal(t, tt.wantKind, poolErr.Kind)
		})
	}

	assert.NoError(t, ClassifyDBError("op", nil))

	already := &common.PoolError{Kind: common.PoolBackend, Err: errors.New("x")}
	assert.Same(t, already, ClassifyDBError("op", already))
}
