package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeIngest = "ingest"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID              int         `bun:",pk,autoincrement" json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Type            string      `bun:",nullzero" json:"type"`
	Status          string      `bun:",nullzero" json:"status"`
	Data            string      `bun:",nullzero" json:"-"`
	DataParsed      interface{} `bun:"-" json:"data"`
	Progress        int         `json:"progress"`
	CancelRequested bool        `json:"cancel_requested"`
	ProcessID       *string     `json:"process_id,omitempty"`
	Error           *string     `json:"error,omitempty"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeIngest:
		job.DataParsed = &JobIngestData{}
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// JobIngestData lists the source files an ingest job should process, in
// order. Each path is one .accdb or .bok book database.
type JobIngestData struct {
	Paths []string `json:"paths"`
}
