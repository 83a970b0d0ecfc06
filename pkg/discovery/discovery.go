// Package discovery classifies the tables of a source book database into
// roles. Shamela files conventionally name the bibliographic table Main, the
// body table b<digits>, and the table of contents t<digits>, but plenty of
// files in the wild deviate, so classification falls back to a scoring
// heuristic over column names, row counts, and sampled values.
package discovery

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/source"
)

var (
	contentNameRE = regexp.MustCompile(`^b\d+$`)
	indexNameRE   = regexp.MustCompile(`^t\d+$`)
)

var bookInfoNames = map[string]struct{}{
	"main":      {},
	"book_info": {},
	"info":      {},
}

// Layout is the discovered shape of one source file.
type Layout struct {
	// BookInfoTable is empty when the file has no bibliographic table; the
	// book then falls back to placeholder metadata.
	BookInfoTable string
	ContentTable  string
	// IndexTable is empty when the file has no table of contents; the book
	// is ingested with zero chapters.
	IndexTable string

	Content ContentColumns
	Index   IndexColumns
}

// ContentColumns are the resolved column names of the body table. Page and
// Part are empty when the table has no such column; callers then default the
// value to 1.
type ContentColumns struct {
	ID   string
	Text string
	Page string
	Part string
}

// IndexColumns are the resolved column names of the table of contents.
type IndexColumns struct {
	ID    string
	Title string
	Level string
}

// Discover assigns roles to the session's tables and resolves the columns of
// the chosen content and index tables. It fails with the no_content_table
// kind when no plausible body table exists.
func Discover(ctx context.Context, sess source.Session, path string, log logger.Logger) (*Layout, error) {
	tables, err := sess.Tables(ctx)
	if err != nil {
		return nil, err
	}

	layout := &Layout{}

	var rest []string
	for _, table := range tables {
		if _, ok := bookInfoNames[strings.ToLower(table)]; ok && layout.BookInfoTable == "" {
			layout.BookInfoTable = table
			continue
		}
		rest = append(rest, table)
	}

	contentTable, indexTable, err := classify(ctx, sess, rest, log)
	if err != nil {
		return nil, err
	}
	if contentTable == "" {
		return nil, errors.WithStack(errcodes.NoContentTable(path))
	}

	layout.ContentTable = contentTable
	layout.IndexTable = indexTable

	columns, _, err := sess.Describe(ctx, contentTable)
	if err != nil {
		return nil, err
	}
	layout.Content = resolveContentColumns(columns)

	if indexTable != "" {
		columns, _, err := sess.Describe(ctx, indexTable)
		if err != nil {
			return nil, err
		}
		layout.Index = resolveIndexColumns(columns)
	}

	return layout, nil
}

func classify(ctx context.Context, sess source.Session, tables []string, log logger.Logger) (content, index string, err error) {
	var bNames, tNames []string
	for _, table := range tables {
		name := strings.ToLower(table)
		switch {
		case contentNameRE.MatchString(name):
			bNames = append(bNames, table)
		case indexNameRE.MatchString(name):
			tNames = append(tNames, table)
		}
	}

	// The traditional layout needs no sniffing.
	if len(bNames) == 1 && len(tNames) <= 1 {
		content = bNames[0]
		if len(tNames) == 1 {
			index = tNames[0]
		} else {
			index = bestIndexCandidate(ctx, sess, tables, content)
		}
		return content, index, nil
	}

	bestScore := 0
	largest := ""
	largestRows := -1
	for _, table := range tables {
		info, err := describe(ctx, sess, table)
		if err != nil {
			return "", "", err
		}
		if info.rowCount > largestRows {
			largest, largestRows = table, info.rowCount
		}
		if info.rowCount < minRowsForScoring {
			continue
		}
		score := scoreContentTable(info)
		if score > bestScore {
			content, bestScore = table, score
		}
	}

	if content == "" && largest != "" {
		log.Warn("no table scored as content; falling back to the largest table", logger.Data{"table": largest, "rows": largestRows})
		content = largest
	}
	if content == "" {
		return "", "", nil
	}

	return content, bestIndexCandidate(ctx, sess, tables, content), nil
}

func bestIndexCandidate(ctx context.Context, sess source.Session, tables []string, content string) string {
	best := ""
	bestScore := 0
	for _, table := range tables {
		if table == content {
			continue
		}
		info, err := describe(ctx, sess, table)
		if err != nil {
			continue
		}
		if score := scoreIndexTable(info); score > bestScore {
			best, bestScore = table, score
		}
	}
	return best
}
