package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestPagination_Limit(t *testing.T) {
	tests := []struct {
		name string
		p    *Pagination
		want int64
	}{
		{"nil pagination", nil, DefaultItemsPerPage},
		{"nil items per page", &Pagination{Page: u64(3)}, DefaultItemsPerPage},
		{"zero clamps to one", &Pagination{ItemsPerPage: u64(0)}, 1},
		{"in range", &Pagination{ItemsPerPage: u64(42)}, 42},
		{"upper bound", &Pagination{ItemsPerPage: u64(100)}, 100},
		{"above max clamps", &Pagination{ItemsPerPage: u64(500)}, MaxItemsPerPage},
		{"huge clamps", &Pagination{ItemsPerPage: u64(math.MaxUint64)}, MaxItemsPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Limit())
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	tests := []struct {
		name string
		p    *Pagination
		want int64
	}{
		{"nil pagination", nil, 0},
		{"nil page", &Pagination{ItemsPerPage: u64(10)}, 0},
		{"page zero", &Pagination{Page: u64(0)}, 0},
		{"first page", &Pagination{Page: u64(1), ItemsPerPage: u64(10)}, 0},
		{"second page default size", &Pagination{Page: u64(2)}, 20},
		{"third page", &Pagination{Page: u64(3), ItemsPerPage: u64(10)}, 20},
		{"clamped size", &Pagination{Page: u64(2), ItemsPerPage: u64(500)}, 100},
		{"saturates", &Pagination{Page: u64(math.MaxUint64), ItemsPerPage: u64(100)}, (math.MaxInt64 / 100) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.Offset()
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

func TestParseOrderDirection(t *testing.T) {
	dir, err := ParseOrderDirection("asc")
	require.NoError(t, err)
	assert.Equal(t, OrderAsc, dir)

	dir, err = ParseOrderDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, dir)

	_, err = ParseOrderDirection("DESC")
	require.Error(t, err)
	assert.Equal(t, "unknown variant `DESC`, expected `asc` or `desc`", err.Error())
}

func TestParseJobOrderField(t *testing.T) {
	f, err := ParseJobOrderField("taskIdentifier")
	require.NoError(t, err)
	assert.Equal(t, JobOrderTaskIdentifier, f)

	f, err = ParseJobOrderField("runAt")
	require.NoError(t, err)
	assert.Equal(t, JobOrderRunAt, f)

	_, err = ParseJobOrderField("priority")
	assert.Error(t, err)
}

func TestOrderSQL(t *testing.T) {
	assert.Equal(t, "task_identifier asc", OrderSQL(nil, JobOrderTaskIdentifier))
	assert.Equal(t, "run_at asc", OrderSQL(nil, JobOrderRunAt))
	assert.Equal(t, "run_at desc", OrderSQL(&Order[JobOrderField]{Field: JobOrderRunAt, Direction: OrderDesc}, JobOrderTaskIdentifier))
	assert.Equal(t, "task_identifier asc", OrderSQL(&Order[JobOrderField]{Field: JobOrderTaskIdentifier, Direction: OrderAsc}, JobOrderRunAt))
}

func TestJobOrderField_SQLIdentPanicsOnUnmapped(t *testing.T) {
	assert.Panics(t, func() { _ = JobOrderField(99).SQLIdent() })
}

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		wantIdent string
	}{
		{"plain", "graphile_worker", `"graphile_worker"`},
		{"mixed case", "Jobs", `"Jobs"`},
		{"embedded quote", `evil"; drop table x; --`, `"evil""; drop table x; --"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchema(tt.schema)
			assert.Equal(t, tt.wantIdent, s.String())
			assert.Equal(t, tt.wantIdent+".jobs", s.Qualify("jobs"))
		})
	}
}
