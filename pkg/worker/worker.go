package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/config"
	"github.com/warraqbooks/warraq/pkg/ingest"
	"github.com/warraqbooks/warraq/pkg/joblogs"
	"github.com/warraqbooks/warraq/pkg/jobs"
	"github.com/warraqbooks/warraq/pkg/models"
)

var processID = randStringBytes(8)

// Worker polls the jobs table and processes ingest jobs one at a time. A
// single processing goroutine is deliberate: book databases are loaded into
// the destination sequentially so a batch's progress stream reads in order.
type Worker struct {
	config *config.Config
	log    logger.Logger

	processFuncs map[string]func(ctx context.Context, job *models.Job) error

	ingestService *ingest.Service
	jobService    *jobs.Service
	jobLogService *joblogs.Service

	queue          chan *models.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB) *Worker {
	w := &Worker{
		config: cfg,
		log:    logger.New(),

		ingestService: ingest.NewService(db, cfg),
		jobService:    jobs.NewService(db),
		jobLogService: joblogs.NewService(db),

		queue:          make(chan *models.Job, 1),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}),
	}

	w.processFuncs = map[string]func(ctx context.Context, job *models.Job) error{
		models.JobTypeIngest: w.ProcessIngestJob,
	}

	return w
}

func (w *Worker) Start() {
	go w.fetchJobs()
	go w.processJobs()
}

func (w *Worker) fetchJobs() {
	duration := w.config.WorkerPollInterval
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop adding more jobs to the queue.
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:              pointerutil.Int(1),
				Statuses:           []string{models.JobStatusPending, models.JobStatusInProgress},
				ProcessIDToExclude: &processID,
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(duration)
				continue
			}
			for _, job := range j {
				w.queue <- job
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			// Prep the context to be passed down to the process function.
			id, err := uuid.NewRandom()
			if err != nil {
				w.log.Err(err).Error("new uuid error")
				continue
			}
			log := w.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
			ctx := log.WithContext(context.Background())

			// Update job to be in progress and claimed by this process.
			job.Status = models.JobStatusInProgress
			job.ProcessID = &processID

			err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
				Columns: []string{"status", "process_id"},
			})
			if err != nil {
				log.Err(err).Error("update job error")
				continue
			}

			// Find and invoke the appropriate process function.
			fn, ok := w.processFuncs[job.Type]
			if !ok {
				log.Error("can't find process function for type")
				continue
			}
			columns := []string{"status", "progress"}
			err = fn(ctx, job)
			if err != nil {
				log.Err(err).Error("process error")
				job.Status = models.JobStatusFailed
				job.Error = pointerutil.String(err.Error())
				columns = append(columns, "error")
			} else if job.Status == models.JobStatusInProgress {
				job.Status = models.JobStatusCompleted
				job.Progress = 100
			}

			// Update job to its final status so that it's not picked up anymore.
			err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
				Columns: columns,
			})
			if err != nil {
				log.Err(err).Error("update job error")
				continue
			}
		}
	}
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	<-w.doneProcessing
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
