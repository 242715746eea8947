package service

import (
	"context"
	"database/sql"
	"math"

	"graphboard/internal/common"
	"graphboard/internal/domain/model"
	"graphboard/internal/domain/repository"
)

// ConnPool is the part of database.Pool the service needs.
type ConnPool interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// JobService runs each operation as exactly one repository call on one pooled
// connection.
type JobService struct {
	pool    ConnPool
	jobRepo repository.JobRepository
}

func NewJobService(pool ConnPool, jobRepo repository.JobRepository) *JobService {
	return &JobService{pool: pool, jobRepo: jobRepo}
}

type FindJobsResult struct {
	Jobs  []model.Job `json:"jobs"`
	Count int64       `json:"count"`
}

func (s *JobService) FindJobs(ctx context.Context, params repository.FindJobsParams) (*FindJobsResult, error) {
	var result FindJobsResult
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		jobs, count, err := s.jobRepo.FindJobs(ctx, conn, params)
		result = FindJobsResult{Jobs: jobs, Count: count}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *JobService) AddJob(ctx context.Context, data model.AddJobData) (*model.Job, error) {
	if data.TaskIdentifier == "" {
		return nil, common.Errorf("taskIdentifier is required: %w", common.ErrBadRequest)
	}

	var job *model.Job
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		job, err = s.jobRepo.AddJob(ctx, conn, data)
		return err
	})
	return job, err
}

func (s *JobService) CompleteJobs(ctx context.Context, jobIDs []int64) ([]model.Job, error) {
	if jobIDs == nil {
		return nil, common.Errorf("jobIds is required: %w", common.ErrBadRequest)
	}

	var jobs []model.Job
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		jobs, err = s.jobRepo.CompleteJobs(ctx, conn, jobIDs)
		return err
	})
	return jobs, err
}

func (s *JobService) PermanentlyFailJobs(ctx context.Context, jobIDs []int64, errorMessage string) ([]model.Job, error) {
	if jobIDs == nil {
		return nil, common.Errorf("jobIds is required: %w", common.ErrBadRequest)
	}

	var jobs []model.Job
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		jobs, err = s.jobRepo.PermanentlyFailJobs(ctx, conn, jobIDs, errorMessage)
		return err
	})
	return jobs, err
}

func (s *JobService) RescheduleJobs(ctx context.Context, data model.RescheduleJobsData) ([]model.Job, error) {
	if data.JobIDs == nil {
		return nil, common.Errorf("jobIds is required: %w", common.ErrBadRequest)
	}
	if exceedsInt32(data.Attempts) || exceedsInt32(data.MaxAttempts) {
		return nil, common.Errorf("attempts and maxAttempts must fit in a 32-bit integer: %w", common.ErrBadRequest)
	}

	var jobs []model.Job
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		jobs, err = s.jobRepo.RescheduleJobs(ctx, conn, data)
		return err
	})
	return jobs, err
}

func (s *JobService) RemoveJob(ctx context.Context, jobKey string) (*model.Job, error) {
	var job *model.Job
	err := s.withConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		var err error
		job, err = s.jobRepo.RemoveJob(ctx, conn, jobKey)
		return err
	})
	return job, err
}

// withConn acquires a connection with the caller's context, then runs fn with
// a context that survives client disconnects so in-flight statements finish.
func (s *JobService) withConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(context.WithoutCancel(ctx), conn)
}

func exceedsInt32(v *uint32) bool {
	return v != nil && *v > math.MaxInt32
}
