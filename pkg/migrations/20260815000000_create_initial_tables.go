package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/models"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		// Table DDL goes through the query builder so the same migration runs
		// against MySQL in production and SQLite in tests.
		tables := []interface{}{
			(*models.Author)(nil),
			(*models.Publisher)(nil),
			(*models.Book)(nil),
			(*models.Volume)(nil),
			(*models.Chapter)(nil),
			(*models.Page)(nil),
			(*models.Job)(nil),
			(*models.JobLog)(nil),
		}
		for _, table := range tables {
			_, err := db.NewCreateTable().
				Model(table).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		// Slugs are the public book identifier, so collisions are rejected at
		// the database and retried with a counter suffix by the loader.
		_, err := db.Exec(`CREATE UNIQUE INDEX ux_books_slug ON books (slug)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_volumes_book_id_number ON volumes (book_id, number)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_chapters_book_id ON chapters (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_pages_book_id ON pages (book_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_pages_chapter_id ON pages (chapter_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_jobs_status_created_at ON jobs (status, created_at)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_job_logs_job_id ON job_logs (job_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(ctx context.Context, db *bun.DB) error {
		for _, table := range []string{"job_logs", "jobs", "pages", "chapters", "volumes", "books", "publishers", "authors"} {
			_, err := db.Exec("DROP TABLE IF EXISTS " + table)
			if err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
