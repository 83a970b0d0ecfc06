package discovery

import (
	"context"
	"strings"

	"github.com/warraqbooks/warraq/pkg/source"
)

// Tables below this row count are never scored as content.
const minRowsForScoring = 10

var (
	textIndicators  = []string{"nass", "text", "content", "matn", "متن", "نص"}
	pageIndicators  = []string{"page", "sahefa", "safha", "صفحة", "صحيفة"}
	idIndicators    = []string{"id", "معرف", "رقم"}
	partIndicators  = []string{"part", "juz", "جزء"}
	titleIndicators = []string{"tit", "عنوان"}
	levelIndicators = []string{"lvl", "مستوى"}
	indexNameHints  = []string{"toc", "index", "فهرس"}
)

type tableInfo struct {
	name     string
	columns  []string
	rowCount int
	sample   source.Row
}

func describe(ctx context.Context, sess source.Session, table string) (*tableInfo, error) {
	columns, rowCount, err := sess.Describe(ctx, table)
	if err != nil {
		return nil, err
	}

	info := &tableInfo{name: table, columns: columns, rowCount: rowCount}
	if rowCount > 0 {
		rows, err := sess.Scan(ctx, table, "")
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			info.sample = rows[0]
		}
	}
	return info, nil
}

// contentFeatures is the scoring rule set for body-table detection. Keeping
// the rules as data makes the heuristic tunable and testable in isolation.
var contentFeatures = []struct {
	name   string
	weight int
	match  func(info *tableInfo) bool
}{
	{"text column", 30, func(info *tableInfo) bool { return hasColumnContaining(info.columns, textIndicators) }},
	{"page column", 20, func(info *tableInfo) bool { return hasColumnContaining(info.columns, pageIndicators) }},
	{"id column", 10, func(info *tableInfo) bool { return hasColumnContaining(info.columns, idIndicators) }},
	{"over 1000 rows", 25, func(info *tableInfo) bool { return info.rowCount > 1000 }},
	{"over 500 rows", 15, func(info *tableInfo) bool { return info.rowCount > 500 && info.rowCount <= 1000 }},
	{"over 100 rows", 10, func(info *tableInfo) bool { return info.rowCount > 100 && info.rowCount <= 500 }},
	{"over 50 rows", 5, func(info *tableInfo) bool { return info.rowCount > 50 && info.rowCount <= 100 }},
	{"long sample value", 15, func(info *tableInfo) bool { return info.sample != nil && info.sample.LongestValue() > 100 }},
	{"traditional content name", 100, func(info *tableInfo) bool { return contentNameRE.MatchString(strings.ToLower(info.name)) }},
	{"traditional index name", 50, func(info *tableInfo) bool { return indexNameRE.MatchString(strings.ToLower(info.name)) }},
}

func scoreContentTable(info *tableInfo) int {
	score := 0
	for _, f := range contentFeatures {
		if f.match(info) {
			score += f.weight
		}
	}
	return score
}

// indexFeatures ranks table-of-contents candidates. A traditional t<digits>
// name dominates; otherwise heading-shaped columns and name hints decide.
var indexFeatures = []struct {
	name   string
	weight int
	match  func(info *tableInfo) bool
}{
	{"traditional index name", 50, func(info *tableInfo) bool { return indexNameRE.MatchString(strings.ToLower(info.name)) }},
	{"title column", 30, func(info *tableInfo) bool { return hasColumnContaining(info.columns, titleIndicators) }},
	{"level column", 10, func(info *tableInfo) bool { return hasColumnContaining(info.columns, levelIndicators) }},
	{"index name hint", 20, func(info *tableInfo) bool { return nameContains(info.name, indexNameHints) }},
}

func scoreIndexTable(info *tableInfo) int {
	score := 0
	for _, f := range indexFeatures {
		if f.match(info) {
			score += f.weight
		}
	}
	return score
}

func hasColumnContaining(columns []string, indicators []string) bool {
	for _, col := range columns {
		if nameContains(col, indicators) {
			return true
		}
	}
	return false
}

func nameContains(name string, indicators []string) bool {
	name = strings.ToLower(name)
	for _, ind := range indicators {
		if strings.Contains(name, ind) {
			return true
		}
	}
	return false
}
