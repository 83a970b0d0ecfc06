package ingest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/warraqbooks/warraq/pkg/config"
	"github.com/warraqbooks/warraq/pkg/migrations"
	"github.com/warraqbooks/warraq/pkg/models"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestService(t *testing.T, db *bun.DB) *Service {
	t.Helper()

	svc := NewService(db, &config.Config{})
	require.NoError(t, svc.EnsureSchema(context.Background()))
	return svc
}

// testSink records warnings so duplicate-skip behaviour can be asserted.
type testSink struct {
	warnings []string
}

func (s *testSink) Info(_ string, _ logger.Data)             {}
func (s *testSink) Success(_ string, _ logger.Data)          {}
func (s *testSink) Progress(_ string, _ logger.Data)         {}
func (s *testSink) Error(_ string, _ error, _ logger.Data)   {}
func (s *testSink) Warn(msg string, _ logger.Data)           { s.warnings = append(s.warnings, msg) }

func runLoad(t *testing.T, svc *Service, ex *Extract, sink Sink) (*Result, error) {
	t.Helper()

	res := &Result{}
	err := svc.db.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return svc.load(ctx, tx, ex, sink, res)
	})
	return res, err
}

func intPtr(n int) *int { return &n }

func traditionalExtract() *Extract {
	shamelaID := "77"
	return &Extract{
		Info: BookInfo{
			Title:     "كتاب الاختبار",
			Author:    "مؤلف أ",
			Publisher: "دار ب",
			ShamelaID: &shamelaID,
		},
		ContentRows: []ContentRow{
			{ID: 1, Text: "الفصل الأول بداية", Page: 1, Part: intPtr(1)},
			{ID: 2, Text: "تتمة", Page: 2, Part: intPtr(1)},
			{ID: 3, Text: "الفصل الثاني", Page: 3, Part: intPtr(2)},
		},
		IndexRows: []IndexRow{
			{ID: 1, Title: "المقدمة", Level: 1},
			{ID: 3, Title: "الباب الأول", Level: 1},
		},
		MaxContentID: 3,
	}
}

func TestLoadTraditionalFile(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	res, err := runLoad(t, svc, traditionalExtract(), &testSink{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Books)
	assert.Equal(t, 2, res.Volumes)
	assert.Equal(t, 2, res.Chapters)
	assert.Equal(t, 3, res.Pages)

	book := &models.Book{}
	require.NoError(t, db.NewSelect().Model(book).Relation("Author").Relation("Publisher").Scan(ctx))
	assert.Equal(t, "كتاب الاختبار", book.Title)
	assert.Equal(t, "مؤلف أ", book.Author.FullName)
	assert.Equal(t, "دار ب", book.Publisher.Name)
	require.NotNil(t, book.ShamelaID)
	assert.Equal(t, "77", *book.ShamelaID)
	assert.Equal(t, models.BookStatusPublished, book.Status)
	assert.Equal(t, 3, book.PageCount)

	volumes := []*models.Volume{}
	require.NoError(t, db.NewSelect().Model(&volumes).Order("v.number ASC").Scan(ctx))
	require.Len(t, volumes, 2)
	assert.Equal(t, 1, volumes[0].Number)
	assert.Equal(t, "المجلد الأول", volumes[0].Title)
	assert.Equal(t, 2, volumes[1].Number)
	assert.Equal(t, "المجلد الثاني", volumes[1].Title)

	chapters := []*models.Chapter{}
	require.NoError(t, db.NewSelect().Model(&chapters).Order("ch.order ASC").Scan(ctx))
	require.Len(t, chapters, 2)

	// Post-refresh ranges are sequential page numbers; the source-id
	// interval stays in internal_index_start/_end.
	assert.Equal(t, "المقدمة", chapters[0].Title)
	assert.Equal(t, 1, chapters[0].PageStart)
	assert.Equal(t, 2, chapters[0].PageEnd)
	assert.Equal(t, 1, chapters[0].InternalIndexStart)
	assert.Equal(t, 2, chapters[0].InternalIndexEnd)
	assert.Equal(t, volumes[0].ID, chapters[0].VolumeID)

	assert.Equal(t, "الباب الأول", chapters[1].Title)
	assert.Equal(t, 3, chapters[1].PageStart)
	assert.Equal(t, 3, chapters[1].PageEnd)
	assert.Equal(t, 3, chapters[1].InternalIndexStart)
	assert.Equal(t, 3, chapters[1].InternalIndexEnd)
	assert.Equal(t, volumes[1].ID, chapters[1].VolumeID)

	pages := []*models.Page{}
	require.NoError(t, db.NewSelect().Model(&pages).Order("p.internal_index ASC").Scan(ctx))
	require.Len(t, pages, 3)
	for i, page := range pages {
		assert.Equal(t, i+1, page.InternalIndex)
		assert.Equal(t, i+1, page.PageNumber)
		require.NotNil(t, page.ChapterID)
	}
	assert.Equal(t, chapters[0].ID, *pages[0].ChapterID)
	assert.Equal(t, chapters[0].ID, *pages[1].ChapterID)
	assert.Equal(t, chapters[1].ID, *pages[2].ChapterID)
	assert.Equal(t, "الفصل الأول بداية", pages[0].Content)
	assert.Equal(t, "<p>الفصل الأول بداية</p>", pages[0].ContentHTML)

	// Containment: every page's number falls inside its chapter's range.
	for _, page := range pages {
		for _, ch := range chapters {
			if ch.ID == *page.ChapterID {
				assert.GreaterOrEqual(t, page.PageNumber, ch.PageStart)
				assert.LessOrEqual(t, page.PageNumber, ch.PageEnd)
			}
		}
	}
}

func TestLoadWithoutIndex(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	ex := traditionalExtract()
	ex.IndexRows = nil

	res, err := runLoad(t, svc, ex, &testSink{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Books)
	assert.Equal(t, 2, res.Volumes)
	assert.Equal(t, 0, res.Chapters)
	assert.Equal(t, 3, res.Pages)

	pages := []*models.Page{}
	require.NoError(t, db.NewSelect().Model(&pages).Order("p.internal_index ASC").Scan(ctx))
	require.Len(t, pages, 3)
	for _, page := range pages {
		assert.Nil(t, page.ChapterID)
	}
}

func TestLoadSkipsDuplicatePages(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	first := traditionalExtract()
	_, err := runLoad(t, svc, first, &testSink{})
	require.NoError(t, err)

	// Second file reuses content ids 2 and 3; only id 4 is new. The
	// duplicates are warned and skipped, and the file still commits.
	second := &Extract{
		Info: BookInfo{Title: "كتاب آخر", Author: "مؤلف ب", Publisher: "دار ب"},
		ContentRows: []ContentRow{
			{ID: 2, Text: "مكرر", Page: 1},
			{ID: 3, Text: "مكرر أيضا", Page: 2},
			{ID: 4, Text: "جديد", Page: 3},
		},
		MaxContentID: 4,
	}

	sink := &testSink{}
	res, err := runLoad(t, svc, second, sink)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Pages)
	assert.Len(t, sink.warnings, 2)

	// Page numbering stays dense: the surviving page is number 1.
	page := &models.Page{}
	require.NoError(t, db.NewSelect().Model(page).Where("p.internal_index = ?", 4).Scan(ctx))
	assert.Equal(t, 1, page.PageNumber)

	// The first book's rows are untouched.
	count, err := db.NewSelect().Model((*models.Page)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Publishers deduplicate by exact name; authors differ.
	publisherCount, err := db.NewSelect().Model((*models.Publisher)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, publisherCount)

	authorCount, err := db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, authorCount)
}

func TestLoadSlugUniqueness(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// Same title three times; each ingest must land on a distinct slug even
	// inside the same second.
	for i := 0; i < 3; i++ {
		ex := traditionalExtract()
		ex.ContentRows = []ContentRow{{ID: i*10 + 1, Text: "نص", Page: 1}}
		ex.IndexRows = nil
		ex.MaxContentID = i*10 + 1
		_, err := runLoad(t, svc, ex, &testSink{})
		require.NoError(t, err)
	}

	books := []*models.Book{}
	require.NoError(t, db.NewSelect().Model(&books).Scan(ctx))
	require.Len(t, books, 3)

	slugs := map[string]struct{}{}
	for _, b := range books {
		slugs[b.Slug] = struct{}{}
	}
	assert.Len(t, slugs, 3)

	// One author row despite three ingests of the same name.
	authorCount, err := db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, authorCount)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// Make the insert of internal_index 2 blow up with a non-duplicate
	// error so the whole file rolls back.
	_, err := db.ExecContext(ctx, `
		CREATE TRIGGER fail_page_two BEFORE INSERT ON pages
		WHEN NEW.internal_index = 2
		BEGIN
			SELECT RAISE(ABORT, 'page two rejected');
		END
	`)
	require.NoError(t, err)

	_, err = runLoad(t, svc, traditionalExtract(), &testSink{})
	require.Error(t, err)

	for _, model := range []interface{}{
		(*models.Author)(nil),
		(*models.Publisher)(nil),
		(*models.Book)(nil),
		(*models.Volume)(nil),
		(*models.Chapter)(nil),
		(*models.Page)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	}
}

func TestLoadPlaceholders(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	// No bibliographic data at all, and an index row with an empty title.
	ex := &Extract{
		Info: placeholderInfo(),
		ContentRows: []ContentRow{
			{ID: 5, Text: "نص وحيد", Page: 1},
		},
		IndexRows:    []IndexRow{{ID: 5, Title: "", Level: 1}},
		MaxContentID: 5,
	}

	_, err := runLoad(t, svc, ex, &testSink{})
	require.NoError(t, err)

	book := &models.Book{}
	require.NoError(t, db.NewSelect().Model(book).Relation("Author").Relation("Publisher").Scan(ctx))
	assert.Equal(t, models.PlaceholderBookTitle, book.Title)
	assert.Equal(t, models.PlaceholderAuthorName, book.Author.FullName)
	assert.Equal(t, models.PlaceholderPublisherName, book.Publisher.Name)

	chapter := &models.Chapter{}
	require.NoError(t, db.NewSelect().Model(chapter).Scan(ctx))
	assert.Equal(t, "فصل 5", chapter.Title)

	// A single volume bucketing the part-less rows.
	volume := &models.Volume{}
	require.NoError(t, db.NewSelect().Model(volume).Scan(ctx))
	assert.Equal(t, 1, volume.Number)
}
