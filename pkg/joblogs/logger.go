package joblogs

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/warraqbooks/warraq/pkg/models"
)

const maxDataValueLen = 1024

// JobLogger is the persisted progress stream of one ingest job: every entry
// goes to stdout through the process logger and to the job_logs table. It
// satisfies the ingest progress sink.
type JobLogger struct {
	jobID   int
	service *Service
	log     logger.Logger
	ctx     context.Context
}

// NewJobLogger creates a JobLogger for a specific job.
func (svc *Service) NewJobLogger(ctx context.Context, jobID int, log logger.Logger) *JobLogger {
	return &JobLogger{
		jobID:   jobID,
		service: svc,
		log:     log.Data(logger.Data{"job_id": jobID}),
		ctx:     ctx,
	}
}

func (l *JobLogger) Info(msg string, data logger.Data) {
	l.log.Info(msg, data)
	l.persist(models.JobLogLevelInfo, msg, data)
}

func (l *JobLogger) Warn(msg string, data logger.Data) {
	l.log.Warn(msg, data)
	l.persist(models.JobLogLevelWarning, msg, data)
}

func (l *JobLogger) Error(msg string, err error, data logger.Data) {
	l.log.Err(err).Error(msg, data)
	if data == nil {
		data = logger.Data{}
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.persist(models.JobLogLevelError, msg, data)
}

func (l *JobLogger) Success(msg string, data logger.Data) {
	l.log.Info(msg, data)
	l.persist(models.JobLogLevelSuccess, msg, data)
}

func (l *JobLogger) Progress(msg string, data logger.Data) {
	l.log.Info(msg, data)
	l.persist(models.JobLogLevelProgress, msg, data)
}

func (l *JobLogger) persist(level, msg string, data logger.Data) {
	var dataStr *string
	if len(data) > 0 {
		truncated := make(logger.Data, len(data))
		for k, v := range data {
			if s, ok := v.(string); ok && len(s) > maxDataValueLen {
				truncated[k] = truncateMiddle(s, maxDataValueLen)
			} else {
				truncated[k] = v
			}
		}
		jsonBytes, err := json.Marshal(truncated)
		if err == nil {
			s := string(jsonBytes)
			dataStr = &s
		}
	}

	jobLog := &models.JobLog{
		JobID:   l.jobID,
		Level:   level,
		Message: msg,
		Data:    dataStr,
	}

	// Progress entries are advisory; losing one must not fail an ingest.
	_ = l.service.CreateJobLog(l.ctx, jobLog)
}

func truncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	half := (maxLen - 5) / 2
	return s[:half] + " ... " + s[len(s)-half:]
}
