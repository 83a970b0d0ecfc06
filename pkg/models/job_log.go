package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	JobLogLevelInfo     = "info"
	JobLogLevelWarning  = "warning"
	JobLogLevelError    = "error"
	JobLogLevelSuccess  = "success"
	JobLogLevelProgress = "progress"
)

// JobLog rows are the persisted progress stream of an ingest job. They are
// advisory for operators; nothing parses them for control flow.
type JobLog struct {
	bun.BaseModel `bun:"table:job_logs,alias:jl"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     int       `bun:",nullzero" json:"job_id"`
	Level     string    `bun:",nullzero" json:"level"`
	Message   string    `bun:",nullzero" json:"message"`
	Data      *string   `json:"data,omitempty"`
}
