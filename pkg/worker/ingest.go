package worker

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/jobs"
	"github.com/warraqbooks/warraq/pkg/models"
)

// ProcessIngestJob loads each source file in the job into the destination
// database, in order. One file failing is logged and skipped; a destination
// outage or a failed schema migration aborts the rest of the batch.
// Cancellation is cooperative and only takes effect between files.
func (w *Worker) ProcessIngestJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*models.JobIngestData)
	if !ok {
		return errors.New("invalid ingest job data")
	}

	sink := w.jobLogService.NewJobLogger(ctx, job.ID, log)
	sink.Info("starting ingest", logger.Data{"files": len(data.Paths)})

	if err := w.ingestService.EnsureSchema(ctx); err != nil {
		sink.Error("destination schema check failed", err, nil)
		return err
	}

	succeeded := 0
	failed := 0

	for i, path := range data.Paths {
		cancelled, err := w.jobService.IsCancelRequested(ctx, job.ID)
		if err != nil {
			return err
		}
		if cancelled {
			sink.Warn("cancellation requested, stopping batch", logger.Data{
				"processed": i,
				"remaining": len(data.Paths) - i,
			})
			break
		}

		sink.Progress("ingesting file", logger.Data{
			"file":    filepath.Base(path),
			"current": i + 1,
			"total":   len(data.Paths),
		})

		res, err := w.ingestService.IngestFile(ctx, path, sink)
		if err != nil {
			if errors.Is(err, errcodes.DestinationUnavailable()) || errors.Is(err, errcodes.SchemaMigrationFailed()) {
				sink.Error("batch aborted", err, logger.Data{"file": filepath.Base(path)})
				return err
			}
			failed++
			sink.Error("file failed, continuing with next", err, logger.Data{"file": filepath.Base(path)})
		} else {
			succeeded++
			sink.Info("file ingested", logger.Data{
				"file":  filepath.Base(path),
				"pages": res.Pages,
			})
		}

		job.Progress = (i + 1) * 100 / len(data.Paths)
		uerr := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{Columns: []string{"progress"}})
		if uerr != nil {
			log.Err(uerr).Error("update job progress error")
		}
	}

	sink.Success("ingest finished", logger.Data{
		"succeeded": succeeded,
		"failed":    failed,
	})

	if succeeded == 0 && failed > 0 {
		return errors.New("all source files failed")
	}
	return nil
}
