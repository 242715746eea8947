package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"graphboard/internal/common"
	"graphboard/internal/domain/model"

	"github.com/lib/pq"
)

// Querier runs a statement. *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type FindJobsFilters struct {
	TaskIdentifier string
	QueueName      string
}

type FindJobsParams struct {
	Order      *Order[JobOrderField]
	Pagination *Pagination
	Filters    FindJobsFilters
}

type JobRepository interface {
	FindJobs(ctx context.Context, q Querier, params FindJobsParams) ([]model.Job, int64, error)
	AddJob(ctx context.Context, q Querier, data model.AddJobData) (*model.Job, error)
	CompleteJobs(ctx context.Context, q Querier, jobIDs []int64) ([]model.Job, error)
	PermanentlyFailJobs(ctx context.Context, q Querier, jobIDs []int64, errorMessage string) ([]model.Job, error)
	RescheduleJobs(ctx context.Context, q Querier, data model.RescheduleJobsData) ([]model.Job, error)
	// RemoveJob returns a nil job when no job has the key.
	RemoveJob(ctx context.Context, q Querier, jobKey string) (*model.Job, error)
}

type pgJobRepository struct {
	schema Schema
}

func NewPgJobRepository(schema Schema) JobRepository {
	return &pgJobRepository{schema: schema}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *pgJobRepository) FindJobs(ctx context.Context, q Querier, params FindJobsParams) ([]model.Job, int64, error) {
	base := fmt.Sprintf(`select j.* from %s j
		where j.task_identifier ilike concat('%%', $1::text, '%%')
		and coalesce(j.queue_name, '') ilike concat('%%', $2::text, '%%')`,
		r.schema.Qualify("jobs"))

	query := fmt.Sprintf(`select
		coalesce((select json_agg(data)::text from (%[1]s order by %[2]s limit $3 offset $4) data), '[]') as jobs,
		(select count(*) from (%[1]s) c) as count`,
		base, OrderSQL(params.Order, JobOrderTaskIdentifier))

	rows, err := q.QueryContext(ctx, query,
		likeEscaper.Replace(params.Filters.TaskIdentifier),
		likeEscaper.Replace(params.Filters.QueueName),
		params.Pagination.Limit(),
		params.Pagination.Offset(),
	)
	if err != nil {
		return nil, 0, ClassifyDBError("pgJobRepository.FindJobs", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, 0, ClassifyDBError("pgJobRepository.FindJobs rows.Err", err)
		}
		return nil, 0, fmt.Errorf("pgJobRepository.FindJobs: %w", common.ErrNotFound)
	}

	var rawJobs sql.NullString
	var count int64
	if err := rows.Scan(&rawJobs, &count); err != nil {
		cols := []string{"jobs", "count"}
		mapErr := &common.MappingError{Field: failingColumn(err, cols), Raw: strings.Join(cols, ","), Err: err}
		log.Printf("ERROR: pgJobRepository.FindJobs: could not scan result (columns %s): %v", mapErr.Raw, err)
		return nil, 0, mapErr
	}

	jobs, err := decodeJobs("jobs", rawJobs)
	if err != nil {
		return nil, 0, err
	}
	return jobs, count, nil
}

func (r *pgJobRepository) AddJob(ctx context.Context, q Querier, data model.AddJobData) (*model.Job, error) {
	query := fmt.Sprintf(`select j.* from %s($1::text, $2::json, $3::text, $4::timestamptz, $5::integer, $6::text, $7::integer, $8::text[], $9::text) j`,
		r.schema.Qualify("add_job"))

	var flags any
	if data.Flags != nil {
		flags = pq.Array(data.Flags)
	}

	rows, err := q.QueryContext(ctx, query,
		data.TaskIdentifier,
		jsonArg(data.Payload),
		data.QueueName,
		data.RunAt,
		data.MaxAttempts,
		data.JobKey,
		data.Priority,
		flags,
		data.JobKeyMode,
	)
	if err != nil {
		return nil, ClassifyDBError("pgJobRepository.AddJob", err)
	}
	defer rows.Close()

	job, err := r.singleJob(rows)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("pgJobRepository.AddJob: %w", common.ErrNotFound)
	}
	return job, nil
}

func (r *pgJobRepository) CompleteJobs(ctx context.Context, q Querier, jobIDs []int64) ([]model.Job, error) {
	query := fmt.Sprintf(`select coalesce(json_agg(cj)::text, '[]') as completed_jobs from %s($1::bigint[]) cj`,
		r.schema.Qualify("complete_jobs"))

	return r.aggregateJobs(ctx, q, "pgJobRepository.CompleteJobs", "completed_jobs", query, idsArg(jobIDs))
}

func (r *pgJobRepository) PermanentlyFailJobs(ctx context.Context, q Querier, jobIDs []int64, errorMessage string) ([]model.Job, error) {
	query := fmt.Sprintf(`select coalesce(json_agg(f)::text, '[]') as permanently_failed_jobs from %s($1::bigint[], $2::text) f`,
		r.schema.Qualify("permanently_fail_jobs"))

	return r.aggregateJobs(ctx, q, "pgJobRepository.PermanentlyFailJobs", "permanently_failed_jobs", query,
		idsArg(jobIDs), errorMessage)
}

func (r *pgJobRepository) RescheduleJobs(ctx context.Context, q Querier, data model.RescheduleJobsData) ([]model.Job, error) {
	query := fmt.Sprintf(`select coalesce(json_agg(rj)::text, '[]') as rescheduled_jobs from %s($1::bigint[], $2::timestamptz, $3::integer, $4::integer, $5::integer) rj`,
		r.schema.Qualify("reschedule_jobs"))

	return r.aggregateJobs(ctx, q, "pgJobRepository.RescheduleJobs", "rescheduled_jobs", query,
		idsArg(data.JobIDs),
		data.RunAt,
		data.Priority,
		uint32Arg(data.Attempts),
		uint32Arg(data.MaxAttempts),
	)
}

func (r *pgJobRepository) RemoveJob(ctx context.Context, q Querier, jobKey string) (*model.Job, error) {
	// remove_job yields an all-NULL row when the key is unknown.
	query := fmt.Sprintf(`select j.* from %s($1::text) j where j.id is not null`,
		r.schema.Qualify("remove_job"))

	rows, err := q.QueryContext(ctx, query, jobKey)
	if err != nil {
		return nil, ClassifyDBError("pgJobRepository.RemoveJob", err)
	}
	defer rows.Close()

	return r.singleJob(rows)
}

// singleJob maps the first row, returning nil when there is none.
func (r *pgJobRepository) singleJob(rows *sql.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, ClassifyDBError("pgJobRepository rows.Err", err)
		}
		return nil, nil
	}
	job, err := scanJob(rows)
	if err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, ClassifyDBError("pgJobRepository rows.Close", err)
	}
	return job, nil
}

// aggregateJobs runs a statement returning a single json_agg text column.
func (r *pgJobRepository) aggregateJobs(ctx context.Context, q Querier, op, column, query string, args ...any) ([]model.Job, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, ClassifyDBError(op+" rows.Err", err)
		}
		return nil, fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}

	var raw sql.NullString
	if err := rows.Scan(&raw); err != nil {
		log.Printf("ERROR: %s: could not scan result (columns %s): %v", op, column, err)
		return nil, &common.MappingError{Field: column, Raw: column, Err: err}
	}
	return decodeJobs(column, raw)
}

func idsArg(ids []int64) any {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Array(ids)
}

func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func uint32Arg(v *uint32) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
