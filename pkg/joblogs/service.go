package joblogs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/models"
)

type ListJobLogsOptions struct {
	JobID  *int
	Levels []string
	Limit  *int
	Offset *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateJobLog(ctx context.Context, jobLog *models.JobLog) error {
	if jobLog.CreatedAt.IsZero() {
		jobLog.CreatedAt = time.Now()
	}

	_, err := svc.db.
		NewInsert().
		Model(jobLog).
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) ListJobLogs(ctx context.Context, opts ListJobLogsOptions) ([]*models.JobLog, error) {
	logs, _, err := svc.listJobLogsWithTotal(ctx, opts)
	return logs, errors.WithStack(err)
}

func (svc *Service) ListJobLogsWithTotal(ctx context.Context, opts ListJobLogsOptions) ([]*models.JobLog, int, error) {
	opts.includeTotal = true
	return svc.listJobLogsWithTotal(ctx, opts)
}

func (svc *Service) listJobLogsWithTotal(ctx context.Context, opts ListJobLogsOptions) ([]*models.JobLog, int, error) {
	logs := []*models.JobLog{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&logs).
		Order("jl.id ASC")

	if opts.JobID != nil {
		q = q.Where("jl.job_id = ?", *opts.JobID)
	}
	if len(opts.Levels) > 0 {
		q = q.Where("jl.level IN (?)", bun.In(opts.Levels))
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return logs, total, nil
}
