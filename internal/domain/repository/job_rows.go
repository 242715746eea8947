package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"graphboard/internal/common"
	"graphboard/internal/domain/model"
)

// jobRecord mirrors a jobs row as the database returns it, either by column
// name or as an element of json_agg. Nil pointers are NULL or missing values.
type jobRecord struct {
	ID             *int64          `json:"id"`
	QueueName      *string         `json:"queue_name"`
	TaskIdentifier *string         `json:"task_identifier"`
	Payload        json.RawMessage `json:"payload"`
	Priority       *int32          `json:"priority"`
	RunAt          *time.Time      `json:"run_at"`
	Attempts       *int32          `json:"attempts"`
	MaxAttempts    *int32          `json:"max_attempts"`
	LastError      *string         `json:"last_error"`
	CreatedAt      *time.Time      `json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at"`
	Key            *string         `json:"key"`
	LockedAt       *time.Time      `json:"locked_at"`
	LockedBy       *string         `json:"locked_by"`
	Revision       *int32          `json:"revision"`
	Flags          json.RawMessage `json:"flags"`
}

var errMissingValue = errors.New("missing or null value")

// toModel checks required columns in declaration order and reports the first
// one that is absent.
func (r *jobRecord) toModel() (model.Job, error) {
	required := []struct {
		name    string
		present bool
	}{
		{"id", r.ID != nil},
		{"task_identifier", r.TaskIdentifier != nil},
		{"priority", r.Priority != nil},
		{"run_at", r.RunAt != nil},
		{"attempts", r.Attempts != nil},
		{"max_attempts", r.MaxAttempts != nil},
		{"created_at", r.CreatedAt != nil},
		{"updated_at", r.UpdatedAt != nil},
		{"revision", r.Revision != nil},
	}
	for _, col := range required {
		if !col.present {
			return model.Job{}, &common.MappingError{Field: col.name, Err: errMissingValue}
		}
	}

	job := model.Job{
		ID:             *r.ID,
		QueueName:      r.QueueName,
		TaskIdentifier: *r.TaskIdentifier,
		Payload:        r.Payload,
		Priority:       *r.Priority,
		RunAt:          *r.RunAt,
		Attempts:       *r.Attempts,
		MaxAttempts:    *r.MaxAttempts,
		LastError:      r.LastError,
		CreatedAt:      *r.CreatedAt,
		UpdatedAt:      *r.UpdatedAt,
		Key:            r.Key,
		LockedAt:       r.LockedAt,
		LockedBy:       r.LockedBy,
		Revision:       *r.Revision,
		Flags:          r.Flags,
	}
	if len(job.Payload) == 0 {
		job.Payload = json.RawMessage("null")
	}
	return job, nil
}

// scanJob reads the current row of rows into a Job, matching columns by name.
// Unknown columns are ignored.
func scanJob(rows *sql.Rows) (*model.Job, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var rec jobRecord
	var payload, flags []byte
	targets := map[string]any{
		"id":              &rec.ID,
		"queue_name":      &rec.QueueName,
		"task_identifier": &rec.TaskIdentifier,
		"payload":         &payload,
		"priority":        &rec.Priority,
		"run_at":          &rec.RunAt,
		"attempts":        &rec.Attempts,
		"max_attempts":    &rec.MaxAttempts,
		"last_error":      &rec.LastError,
		"created_at":      &rec.CreatedAt,
		"updated_at":      &rec.UpdatedAt,
		"key":             &rec.Key,
		"locked_at":       &rec.LockedAt,
		"locked_by":       &rec.LockedBy,
		"revision":        &rec.Revision,
		"flags":           &flags,
	}

	dest := make([]any, len(cols))
	for i, col := range cols {
		if target, ok := targets[col]; ok {
			dest[i] = target
			continue
		}
		dest[i] = new(sql.RawBytes)
	}

	if err := rows.Scan(dest...); err != nil {
		mapErr := &common.MappingError{Field: failingColumn(err, cols), Raw: strings.Join(cols, ","), Err: err}
		log.Printf("ERROR: scanJob: could not scan job row (columns %s): %v", mapErr.Raw, err)
		return nil, mapErr
	}
	rec.Payload = payload
	rec.Flags = flags

	job, err := rec.toModel()
	if err != nil {
		var mapErr *common.MappingError
		if errors.As(err, &mapErr) {
			mapErr.Raw = fmt.Sprintf("%+v", rec)
		}
		log.Printf("ERROR: scanJob: invalid job row %+v: %v", rec, err)
		return nil, err
	}
	return &job, nil
}

// failingColumn extracts the column name from a database/sql scan error.
func failingColumn(err error, cols []string) string {
	msg := err.Error()
	for _, col := range cols {
		if strings.Contains(msg, fmt.Sprintf("name %q", col)) {
			return col
		}
	}
	return ""
}

// decodeJobs parses the text of a json_agg over jobs rows. NULL and empty
// input decode to an empty, non-nil slice.
func decodeJobs(column string, raw sql.NullString) ([]model.Job, error) {
	jobs := []model.Job{}
	if !raw.Valid || raw.String == "" {
		return jobs, nil
	}

	var records []jobRecord
	if err := json.Unmarshal([]byte(raw.String), &records); err != nil {
		log.Printf("ERROR: decodeJobs: malformed %s JSON %q: %v", column, raw.String, err)
		return nil, &common.MappingError{Field: column, Raw: raw.String, Err: err}
	}

	for i := range records {
		job, err := records[i].toModel()
		if err != nil {
			var mapErr *common.MappingError
			if errors.As(err, &mapErr) {
				mapErr.Field = fmt.Sprintf("%s[%d].%s", column, i, mapErr.Field)
				mapErr.Raw = raw.String
			}
			log.Printf("ERROR: decodeJobs: invalid job in %s %q: %v", column, raw.String, err)
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
