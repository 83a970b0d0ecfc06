package ingest

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/warraqbooks/warraq/pkg/arabictext"
	"github.com/warraqbooks/warraq/pkg/database"
	"github.com/warraqbooks/warraq/pkg/models"
)

const slugRetryLimit = 5

// chapterSpan pairs an inserted chapter with its source-id interval so page
// assignment and the range refresh can find it without re-querying.
type chapterSpan struct {
	chapter *models.Chapter
	startID int
	endID   int
}

// load runs all destination writes for one book. It executes inside one
// transaction; any returned error rolls the whole file back.
func (svc *Service) load(ctx context.Context, tx bun.Tx, ex *Extract, sink Sink, res *Result) error {
	author, err := svc.findOrCreateAuthor(ctx, tx, ex.Info.Author)
	if err != nil {
		return err
	}
	publisher, err := svc.findOrCreatePublisher(ctx, tx, ex.Info.Publisher)
	if err != nil {
		return err
	}

	book, err := svc.insertBook(ctx, tx, ex.Info, author, publisher)
	if err != nil {
		return err
	}
	res.Books = 1

	partToVolume, err := svc.insertVolumes(ctx, tx, book, ex.ContentRows)
	if err != nil {
		return err
	}
	res.Volumes = len(partToVolume)

	spans, err := svc.insertChapters(ctx, tx, book, ex, partToVolume)
	if err != nil {
		return err
	}
	res.Chapters = len(spans)

	inserted, err := svc.insertPages(ctx, tx, book, ex.ContentRows, spans, sink)
	if err != nil {
		return err
	}
	res.Pages = inserted

	if err := svc.refreshChapterRanges(ctx, tx, spans); err != nil {
		return err
	}

	now := time.Now()
	book.PageCount = inserted
	book.UpdatedAt = now
	_, err = tx.NewUpdate().
		Model(book).
		Column("page_count", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// findOrCreateAuthor deduplicates authors by exact full_name match. An empty
// name becomes the unknown-author placeholder.
func (svc *Service) findOrCreateAuthor(ctx context.Context, tx bun.Tx, name string) (*models.Author, error) {
	name = singleLine(arabictext.Clean(name))
	if name == "" {
		name = models.PlaceholderAuthorName
	}

	author := &models.Author{}
	err := tx.NewSelect().
		Model(author).
		Where("a.full_name = ?", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	author = &models.Author{FullName: name, CreatedAt: now, UpdatedAt: now}
	_, err = tx.NewInsert().Model(author).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return author, nil
}

func (svc *Service) findOrCreatePublisher(ctx context.Context, tx bun.Tx, name string) (*models.Publisher, error) {
	name = singleLine(arabictext.Clean(name))
	if name == "" {
		name = models.PlaceholderPublisherName
	}

	publisher := &models.Publisher{}
	err := tx.NewSelect().
		Model(publisher).
		Where("pub.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return publisher, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	publisher = &models.Publisher{Name: name, CreatedAt: now, UpdatedAt: now}
	_, err = tx.NewInsert().Model(publisher).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return publisher, nil
}

// insertBook writes the book row. The slug carries a unix-epoch suffix so
// two ingests of the same title diverge; a duplicate inside one second is
// retried with a counter.
func (svc *Service) insertBook(ctx context.Context, tx bun.Tx, info BookInfo, author *models.Author, publisher *models.Publisher) (*models.Book, error) {
	title := singleLine(arabictext.Clean(info.Title))
	if title == "" {
		title = models.PlaceholderBookTitle
	}

	now := time.Now()
	base := arabictext.Slugify(title) + "-" + strconv.FormatInt(now.Unix(), 10)

	book := &models.Book{
		Title:       title,
		Description: arabictext.Clean(info.Description),
		ShamelaID:   info.ShamelaID,
		AuthorID:    author.ID,
		PublisherID: publisher.ID,
		Status:      models.BookStatusPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < slugRetryLimit; attempt++ {
		book.Slug = base
		if attempt > 0 {
			book.Slug = base + "-" + strconv.Itoa(attempt+1)
		}

		_, err := tx.NewInsert().Model(book).Exec(ctx)
		if err == nil {
			return book, nil
		}
		if !database.IsDuplicateKey(err) {
			return nil, errors.WithStack(err)
		}
	}

	return nil, errors.Errorf("could not find a unique slug for %q", title)
}

// insertVolumes creates one volume per distinct part value, rows without a
// part bucketing to 1. Existing (book_id, number) rows are reused.
func (svc *Service) insertVolumes(ctx context.Context, tx bun.Tx, book *models.Book, rows []ContentRow) (map[int]int, error) {
	partSet := map[int]struct{}{}
	for _, row := range rows {
		partSet[partOf(row)] = struct{}{}
	}
	if len(partSet) == 0 {
		partSet[1] = struct{}{}
	}

	parts := make([]int, 0, len(partSet))
	for p := range partSet {
		parts = append(parts, p)
	}
	sort.Ints(parts)

	now := time.Now()
	partToVolume := make(map[int]int, len(parts))
	for _, p := range parts {
		volume := &models.Volume{
			BookID:    book.ID,
			Number:    p,
			Title:     arabictext.VolumeTitle(p),
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err := tx.NewInsert().Model(volume).Exec(ctx)
		if err != nil {
			if !database.IsDuplicateKey(err) {
				return nil, errors.WithStack(err)
			}
			volume = &models.Volume{}
			err = tx.NewSelect().
				Model(volume).
				Where("v.book_id = ? AND v.number = ?", book.ID, p).
				Scan(ctx)
			if err != nil {
				return nil, errors.WithStack(err)
			}
		}

		partToVolume[p] = volume.ID
	}

	return partToVolume, nil
}

// insertChapters turns sorted index rows into chapters with half-open
// interval bounds: chapter k spans [id(k), id(k+1)) and the last chapter
// runs to the highest content id in the file.
func (svc *Service) insertChapters(ctx context.Context, tx bun.Tx, book *models.Book, ex *Extract, partToVolume map[int]int) ([]chapterSpan, error) {
	indexRows := append([]IndexRow(nil), ex.IndexRows...)
	sort.SliceStable(indexRows, func(i, j int) bool { return indexRows[i].ID < indexRows[j].ID })

	now := time.Now()
	spans := make([]chapterSpan, 0, len(indexRows))
	for k, ir := range indexRows {
		startID := ir.ID
		endID := ex.MaxContentID
		if k+1 < len(indexRows) {
			endID = indexRows[k+1].ID - 1
		}

		title := singleLine(arabictext.Clean(ir.Title))
		if title == "" {
			title = "فصل " + strconv.Itoa(startID)
		}

		chapter := &models.Chapter{
			BookID:             book.ID,
			VolumeID:           svc.volumeForInterval(ex.ContentRows, startID, endID, partToVolume),
			Title:              title,
			Level:              ir.Level,
			PageStart:          startID,
			PageEnd:            endID,
			Order:              startID,
			InternalIndexStart: startID,
			InternalIndexEnd:   endID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		_, err := tx.NewInsert().Model(chapter).Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		spans = append(spans, chapterSpan{chapter: chapter, startID: startID, endID: endID})
	}

	return spans, nil
}

// volumeForInterval picks the volume of the first content row falling in
// [startID, endID], falling back to the part-1 volume.
func (svc *Service) volumeForInterval(rows []ContentRow, startID, endID int, partToVolume map[int]int) int {
	idx := sort.Search(len(rows), func(i int) bool { return rows[i].ID >= startID })
	if idx < len(rows) && rows[idx].ID <= endID {
		if id, ok := partToVolume[partOf(rows[idx])]; ok {
			return id
		}
	}
	return partToVolume[1]
}

// insertPages writes content rows in id order with a dense 1..N page_number.
// Chapter assignment walks a cursor over the sorted spans in lockstep, so
// the whole pass is linear. Duplicate internal_index rows are skipped with a
// warning; the counter only advances on successful inserts.
func (svc *Service) insertPages(ctx context.Context, tx bun.Tx, book *models.Book, rows []ContentRow, spans []chapterSpan, sink Sink) (int, error) {
	now := time.Now()
	seq := 1
	cursor := 0

	for _, row := range rows {
		for cursor < len(spans) && spans[cursor].endID < row.ID {
			cursor++
		}
		var chapterID *int
		if cursor < len(spans) && spans[cursor].startID <= row.ID {
			id := spans[cursor].chapter.ID
			chapterID = &id
		}

		plain := arabictext.Clean(row.Text)
		page := &models.Page{
			InternalIndex: row.ID,
			BookID:        book.ID,
			ChapterID:     chapterID,
			PageNumber:    seq,
			Content:       plain,
			Part:          row.Part,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		q := tx.NewInsert().Model(page)
		if svc.schema.hasContentHTML {
			page.ContentHTML = arabictext.RenderHTML(plain)
		} else {
			q = q.ExcludeColumn("content_html")
		}

		_, err := q.Exec(ctx)
		if err != nil {
			if database.IsDuplicateKey(err) {
				sink.Warn("page already exists; skipping", logger.Data{
					"internal_index": row.ID,
					"book_id":        book.ID,
				})
				continue
			}
			return 0, errors.WithStack(err)
		}

		seq++
	}

	return seq - 1, nil
}

// refreshChapterRanges overwrites each chapter's page_start/page_end with
// the MIN/MAX page_number of its pages, so downstream readers see the dense
// sequential numbering instead of source ids. Chapters that ended up with no
// pages keep their interval ids.
func (svc *Service) refreshChapterRanges(ctx context.Context, tx bun.Tx, spans []chapterSpan) error {
	now := time.Now()
	for _, span := range spans {
		var bounds struct {
			Min sql.NullInt64
			Max sql.NullInt64
		}
		err := tx.NewSelect().
			Model((*models.Page)(nil)).
			ColumnExpr("MIN(p.page_number) AS min").
			ColumnExpr("MAX(p.page_number) AS max").
			Where("p.chapter_id = ?", span.chapter.ID).
			Scan(ctx, &bounds.Min, &bounds.Max)
		if err != nil {
			return errors.WithStack(err)
		}
		if !bounds.Min.Valid {
			continue
		}

		span.chapter.PageStart = int(bounds.Min.Int64)
		span.chapter.PageEnd = int(bounds.Max.Int64)
		span.chapter.UpdatedAt = now
		_, err = tx.NewUpdate().
			Model(span.chapter).
			Column("page_start", "page_end", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func partOf(row ContentRow) int {
	if row.Part != nil {
		return *row.Part
	}
	return 1
}

func singleLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
