package ingest

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/warraqbooks/warraq/pkg/discovery"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/models"
	"github.com/warraqbooks/warraq/pkg/source"
)

// BookInfo is the single bibliographic record of a source file. Any field
// may be missing in the wild; absent values fall back to placeholders.
type BookInfo struct {
	Title       string
	Author      string
	Publisher   string
	Description string
	Year        string
	ShamelaID   *string
}

// ContentRow is one body record. ID is the origin-file primary key used for
// chapter interval linkage, not the printed page number.
type ContentRow struct {
	ID   int
	Text string
	Page int
	Part *int
}

// IndexRow is one table-of-contents entry; ID equals the ContentRow.ID at
// which the chapter begins.
type IndexRow struct {
	ID    int
	Title string
	Level int
}

// Extract is everything read out of one source file.
type Extract struct {
	Info         BookInfo
	ContentRows  []ContentRow
	IndexRows    []IndexRow
	MaxContentID int
}

var bookInfoFields = map[string][]string{
	"title":       {"bk", "title", "book"},
	"author":      {"auth", "author"},
	"publisher":   {"publisher", "nasher"},
	"description": {"betaka", "description"},
	"id":          {"bkid", "id"},
	"year":        {"year", "sana"},
}

func extract(ctx context.Context, sess source.Session, layout *discovery.Layout, path string) (*Extract, error) {
	if layout.Content.Text == "" {
		return nil, errors.WithStack(errcodes.NoContentTable(path))
	}

	ex := &Extract{Info: placeholderInfo()}

	if layout.BookInfoTable != "" {
		if err := extractBookInfo(ctx, sess, layout.BookInfoTable, &ex.Info); err != nil {
			return nil, err
		}
	}

	rows, err := sess.Scan(ctx, layout.ContentTable, layout.Content.ID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		id, ok := row.Int(layout.Content.ID)
		if !ok {
			// A body row without a usable id can't be linked to chapters.
			continue
		}

		cr := ContentRow{ID: id, Text: row.Get(layout.Content.Text), Page: 1}
		if layout.Content.Page != "" {
			if page, ok := row.Int(layout.Content.Page); ok {
				cr.Page = page
			}
		}
		if layout.Content.Part != "" {
			if part, ok := row.Int(layout.Content.Part); ok {
				cr.Part = &part
			}
		}

		ex.ContentRows = append(ex.ContentRows, cr)
		if id > ex.MaxContentID {
			ex.MaxContentID = id
		}
	}

	if layout.IndexTable != "" {
		rows, err := sess.Scan(ctx, layout.IndexTable, layout.Index.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			id, ok := row.Int(layout.Index.ID)
			if !ok {
				continue
			}

			ir := IndexRow{ID: id, Level: 1}
			if layout.Index.Title != "" {
				ir.Title = row.Get(layout.Index.Title)
			}
			if layout.Index.Level != "" {
				if lvl, ok := row.Int(layout.Index.Level); ok && lvl > 0 {
					ir.Level = lvl
				}
			}

			ex.IndexRows = append(ex.IndexRows, ir)
		}
	}

	return ex, nil
}

func extractBookInfo(ctx context.Context, sess source.Session, table string, info *BookInfo) error {
	rows, err := sess.Scan(ctx, table, "")
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]

	if v := rowField(row, bookInfoFields["title"]); v != "" {
		info.Title = v
	}
	if v := rowField(row, bookInfoFields["author"]); v != "" {
		info.Author = v
	}
	if v := rowField(row, bookInfoFields["publisher"]); v != "" {
		info.Publisher = v
	}
	if v := rowField(row, bookInfoFields["description"]); v != "" {
		info.Description = v
	}
	if v := rowField(row, bookInfoFields["year"]); v != "" {
		info.Year = v
	}
	if v := rowField(row, bookInfoFields["id"]); v != "" {
		info.ShamelaID = &v
	}

	return nil
}

func placeholderInfo() BookInfo {
	return BookInfo{
		Title:     models.PlaceholderBookTitle,
		Author:    models.PlaceholderAuthorName,
		Publisher: models.PlaceholderPublisherName,
	}
}

// rowField finds the first alias that names a non-empty column and returns
// its trimmed value. Aliases are tried in order so the conventional Shamela
// name wins when a file carries both.
func rowField(row source.Row, aliases []string) string {
	for _, alias := range aliases {
		for col, v := range row {
			if strings.ToLower(col) == alias {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
