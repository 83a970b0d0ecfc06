package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
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

// seedBook inserts a book with its author, publisher, one volume, one
// chapter, and two pages.
func seedBook(t *testing.T, db *bun.DB, title, slug string) *models.Book {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	author := &models.Author{FullName: "مؤلف " + title, CreatedAt: now, UpdatedAt: now}
	_, err := db.NewInsert().Model(author).Exec(ctx)
	require.NoError(t, err)

	publisher := &models.Publisher{Name: "دار " + title, CreatedAt: now, UpdatedAt: now}
	_, err = db.NewInsert().Model(publisher).Exec(ctx)
	require.NoError(t, err)

	book := &models.Book{
		Title:       title,
		Slug:        slug,
		AuthorID:    author.ID,
		PublisherID: publisher.ID,
		Status:      models.BookStatusPublished,
		PageCount:   2,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	volume := &models.Volume{BookID: book.ID, Number: 1, Title: "المجلد الأول", CreatedAt: now, UpdatedAt: now}
	_, err = db.NewInsert().Model(volume).Exec(ctx)
	require.NoError(t, err)

	chapter := &models.Chapter{
		BookID:    book.ID,
		VolumeID:  volume.ID,
		Title:     "المقدمة",
		Level:     1,
		PageStart: 1,
		PageEnd:   2,
		Order:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = db.NewInsert().Model(chapter).Exec(ctx)
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		page := &models.Page{
			InternalIndex: book.ID*100 + i,
			BookID:        book.ID,
			ChapterID:     &chapter.ID,
			PageNumber:    i,
			Content:       "نص",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = db.NewInsert().Model(page).Exec(ctx)
		require.NoError(t, err)
	}

	return book
}

func TestRetrieveBook(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(t, db, "الموطأ", "almuwatta-1")

	got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)

	assert.Equal(t, "الموطأ", got.Title)
	require.NotNil(t, got.Author)
	require.NotNil(t, got.Publisher)
	require.Len(t, got.Volumes, 1)
	require.Len(t, got.Chapters, 1)
	assert.Equal(t, "المقدمة", got.Chapters[0].Title)

	bySlug, err := svc.RetrieveBook(ctx, RetrieveBookOptions{Slug: &got.Slug})
	require.NoError(t, err)
	assert.Equal(t, got.ID, bySlug.ID)
}

func TestRetrieveBookNotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.RetrieveBook(context.Background(), RetrieveBookOptions{ID: pointerutil.Int(999)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListBooks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := seedBook(t, db, "الموطأ", "almuwatta-1")
	seedBook(t, db, "الأم", "alumm-1")

	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, books, 2)
	require.NotNil(t, books[0].Author)

	byAuthor, err := svc.ListBooks(ctx, ListBooksOptions{AuthorID: &first.AuthorID})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, first.ID, byAuthor[0].ID)

	search := "الأم"
	found, err := svc.ListBooks(ctx, ListBooksOptions{Search: &search})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "الأم", found[0].Title)

	limited, err := svc.ListBooks(ctx, ListBooksOptions{Limit: pointerutil.Int(1), Offset: pointerutil.Int(1)})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestListPages(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	book := seedBook(t, db, "الموطأ", "almuwatta-1")
	seedBook(t, db, "الأم", "alumm-1")

	pages, total, err := svc.ListPages(ctx, book.ID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 2, pages[1].PageNumber)
}
