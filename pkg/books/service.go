package books

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/models"
)

type RetrieveBookOptions struct {
	ID   *int
	Slug *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	AuthorID *int
	Search   *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Publisher").
		Relation("Volumes", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("v.number ASC")
		}).
		Relation("Chapters", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("ch.order ASC")
		})

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Slug != nil {
		q = q.Where("b.slug = ?", *opts.Slug)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Relation("Publisher").
		Order("b.created_at ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.Search != nil {
		q = q.Where("b.title LIKE ?", "%"+*opts.Search+"%")
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// ListPages returns the pages of one book in reading order. Chapters are not
// joined here since the chapter list already comes with the book itself.
func (svc *Service) ListPages(ctx context.Context, bookID int, limit, offset int) ([]*models.Page, int, error) {
	pages := []*models.Page{}

	q := svc.db.
		NewSelect().
		Model(&pages).
		Where("p.book_id = ?", bookID).
		Order("p.internal_index ASC").
		Limit(limit).
		Offset(offset)

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return pages, total, nil
}
