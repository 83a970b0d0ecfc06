// Package ingest is the per-book pipeline: open a source file, discover its
// schema, extract and normalize its text, and commit one complete book to
// the destination inside a single transaction.
package ingest

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/config"
	"github.com/warraqbooks/warraq/pkg/discovery"
	"github.com/warraqbooks/warraq/pkg/source"
)

type Service struct {
	db  *bun.DB
	cfg *config.Config
	log logger.Logger

	schemaOnce sync.Once
	schema     *schemaState
	schemaErr  error
}

func NewService(db *bun.DB, cfg *config.Config) *Service {
	return &Service{db: db, cfg: cfg, log: logger.New()}
}

// Result is the per-file ingest stats reported upward.
type Result struct {
	Books    int           `json:"books"`
	Volumes  int           `json:"volumes"`
	Chapters int           `json:"chapters"`
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"duration"`
}

// EnsureSchema runs the destination schema-compatibility pass once per
// process. A failure here is fatal for the whole batch.
func (svc *Service) EnsureSchema(ctx context.Context) error {
	svc.schemaOnce.Do(func() {
		svc.schema, svc.schemaErr = ensureSchema(ctx, svc.db)
	})
	return svc.schemaErr
}

// IngestFile processes one source file start to finish. On error the file's
// destination writes are rolled back and the error carries the filename;
// other files in a batch are unaffected.
func (svc *Service) IngestFile(ctx context.Context, path string, sink Sink) (*Result, error) {
	start := time.Now()

	if err := svc.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	sink.Progress("opening source file", logger.Data{"path": path})
	sess, err := source.Open(ctx, path, source.Options{MDBToolsDir: svc.cfg.MDBToolsDir, Log: svc.log})
	if err != nil {
		return nil, wrapFile(err, path)
	}
	defer sess.Close()

	layout, err := discovery.Discover(ctx, sess, path, svc.log)
	if err != nil {
		return nil, wrapFile(err, path)
	}
	sink.Info("discovered source layout", logger.Data{
		"book_info_table": layout.BookInfoTable,
		"content_table":   layout.ContentTable,
		"index_table":     layout.IndexTable,
	})

	ex, err := extract(ctx, sess, layout, path)
	if err != nil {
		return nil, wrapFile(err, path)
	}
	sink.Info("extracted source rows", logger.Data{
		"title":        ex.Info.Title,
		"content_rows": len(ex.ContentRows),
		"index_rows":   len(ex.IndexRows),
	})

	res := &Result{}
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return svc.load(ctx, tx, ex, sink, res)
	})
	if err != nil {
		return nil, wrapFile(err, path)
	}

	res.Duration = time.Since(start)
	sink.Success("book committed", logger.Data{
		"volumes":  res.Volumes,
		"chapters": res.Chapters,
		"pages":    res.Pages,
		"duration": res.Duration.String(),
	})
	return res, nil
}

func wrapFile(err error, path string) error {
	return errors.Wrapf(err, "ingest %s", filepath.Base(path))
}
