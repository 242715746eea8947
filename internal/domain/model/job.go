package model

import (
	"encoding/json"
	"time"
)

// Job is a row of the graphile-worker jobs table.
type Job struct {
	ID             int64           `json:"id"`
	QueueName      *string         `json:"queueName"`
	TaskIdentifier string          `json:"taskIdentifier"`
	Payload        json.RawMessage `json:"payload"`
	Priority       int32           `json:"priority"`
	RunAt          time.Time       `json:"runAt"`
	Attempts       int32           `json:"attempts"`
	MaxAttempts    int32           `json:"maxAttempts"`
	LastError      *string         `json:"lastError"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Key            *string         `json:"key"`
	LockedAt       *time.Time      `json:"lockedAt"`
	LockedBy       *string         `json:"lockedBy"`
	Revision       int32           `json:"revision"`
	Flags          json.RawMessage `json:"flags"`
}

// AddJobData holds the arguments of the add_job database function. Only
// TaskIdentifier is required; the function applies defaults for the rest.
type AddJobData struct {
	TaskIdentifier string          `json:"taskIdentifier"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	QueueName      *string         `json:"queueName,omitempty"`
	RunAt          *time.Time      `json:"runAt,omitempty"`
	MaxAttempts    *int32          `json:"maxAttempts,omitempty"`
	JobKey         *string         `json:"jobKey,omitempty"`
	Priority       *int32          `json:"priority,omitempty"`
	Flags          []string        `json:"flags,omitempty"`
	JobKeyMode     *string         `json:"jobKeyMode,omitempty"`
}

// RescheduleJobsData holds the arguments of reschedule_jobs. Nil fields leave
// the corresponding column unchanged.
type RescheduleJobsData struct {
	JobIDs      []int64    `json:"jobIds"`
	RunAt       *time.Time `json:"runAt,omitempty"`
	Priority    *int32     `json:"priority,omitempty"`
	Attempts    *uint32    `json:"attempts,omitempty"`
	MaxAttempts *uint32    `json:"maxAttempts,omitempty"`
}
