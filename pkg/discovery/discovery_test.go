package discovery

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/source"
)

type fakeTable struct {
	columns []string
	rows    []source.Row
}

type fakeSession struct {
	order  []string
	tables map[string]fakeTable
}

func (s *fakeSession) Tables(_ context.Context) ([]string, error) {
	return s.order, nil
}

func (s *fakeSession) Describe(_ context.Context, table string) ([]string, int, error) {
	t := s.tables[table]
	return t.columns, len(t.rows), nil
}

func (s *fakeSession) Scan(_ context.Context, table, _ string) ([]source.Row, error) {
	return s.tables[table].rows, nil
}

func (s *fakeSession) Close() error { return nil }

func repeatRows(row source.Row, n int) []source.Row {
	rows := make([]source.Row, n)
	for i := range rows {
		rows[i] = row
	}
	return rows
}

func TestDiscoverTraditionalLayout(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		order: []string{"Main", "b12345", "t12345"},
		tables: map[string]fakeTable{
			"Main":   {columns: []string{"Bk", "Auth", "BkId"}, rows: repeatRows(source.Row{"Bk": "كتاب"}, 1)},
			"b12345": {columns: []string{"id", "nass", "page", "part"}, rows: repeatRows(source.Row{"id": "1"}, 3)},
			"t12345": {columns: []string{"id", "tit", "lvl"}, rows: repeatRows(source.Row{"id": "1"}, 2)},
		},
	}

	layout, err := Discover(context.Background(), sess, "/data/book.bok", logger.New())
	require.NoError(t, err)

	assert.Equal(t, "Main", layout.BookInfoTable)
	assert.Equal(t, "b12345", layout.ContentTable)
	assert.Equal(t, "t12345", layout.IndexTable)
	assert.Equal(t, "id", layout.Content.ID)
	assert.Equal(t, "nass", layout.Content.Text)
	assert.Equal(t, "page", layout.Content.Page)
	assert.Equal(t, "part", layout.Content.Part)
	assert.Equal(t, "id", layout.Index.ID)
	assert.Equal(t, "tit", layout.Index.Title)
	assert.Equal(t, "lvl", layout.Index.Level)
}

func TestDiscoverNoisyTableNames(t *testing.T) {
	t.Parallel()

	longText := strings.Repeat("متن طويل جدا ", 20)
	sess := &fakeSession{
		order: []string{"DataTab", "Toc"},
		tables: map[string]fakeTable{
			"DataTab": {
				columns: []string{"rowid", "matn", "page"},
				rows:    repeatRows(source.Row{"rowid": "1", "matn": longText, "page": "1"}, 100),
			},
			"Toc": {
				columns: []string{"rowid", "tit"},
				rows:    repeatRows(source.Row{"rowid": "1", "tit": "باب"}, 10),
			},
		},
	}

	layout, err := Discover(context.Background(), sess, "/data/noisy.accdb", logger.New())
	require.NoError(t, err)

	assert.Empty(t, layout.BookInfoTable)
	assert.Equal(t, "DataTab", layout.ContentTable)
	assert.Equal(t, "Toc", layout.IndexTable)
	assert.Equal(t, "matn", layout.Content.Text)
	assert.Equal(t, "rowid", layout.Content.ID)
	assert.Equal(t, "tit", layout.Index.Title)
}

func TestDiscoverNoContentTable(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{
		order:  []string{"Main"},
		tables: map[string]fakeTable{"Main": {columns: []string{"Bk"}, rows: repeatRows(source.Row{"Bk": "كتاب"}, 1)}},
	}

	_, err := Discover(context.Background(), sess, "/data/empty.bok", logger.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errcodes.NoContentTable("/data/empty.bok")))
}

func TestDiscoverFallsBackToLargestTable(t *testing.T) {
	t.Parallel()

	// Nothing matches any naming or column rule; the largest table carries
	// the day with a warning.
	sess := &fakeSession{
		order: []string{"alpha", "beta"},
		tables: map[string]fakeTable{
			"alpha": {columns: []string{"x"}, rows: repeatRows(source.Row{"x": "a"}, 3)},
			"beta":  {columns: []string{"y"}, rows: repeatRows(source.Row{"y": "b"}, 7)},
		},
	}

	layout, err := Discover(context.Background(), sess, "/data/odd.bok", logger.New())
	require.NoError(t, err)
	assert.Equal(t, "beta", layout.ContentTable)
}

func TestScoreContentTable(t *testing.T) {
	t.Parallel()

	info := &tableInfo{
		name:     "DataTab",
		columns:  []string{"rowid", "matn", "page"},
		rowCount: 100,
	}
	// text (30) + page (20) + id (10) + over 50 rows (5)
	assert.Equal(t, 65, scoreContentTable(info))

	traditional := &tableInfo{name: "b100", columns: []string{"id", "nass"}, rowCount: 2000}
	// text (30) + id (10) + over 1000 rows (25) + traditional name (100)
	assert.Equal(t, 165, scoreContentTable(traditional))
}

func TestScoreIndexTable(t *testing.T) {
	t.Parallel()

	toc := &tableInfo{name: "Toc", columns: []string{"rowid", "tit"}}
	// title (30) + name hint (20)
	assert.Equal(t, 50, scoreIndexTable(toc))

	traditional := &tableInfo{name: "t100", columns: []string{"id", "tit", "lvl"}}
	// traditional name (50) + title (30) + level (10)
	assert.Equal(t, 90, scoreIndexTable(traditional))
}

func TestResolveContentColumns(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		expected ContentColumns
	}{
		{
			name:     "conventional names",
			columns:  []string{"id", "nass", "page", "part"},
			expected: ContentColumns{ID: "id", Text: "nass", Page: "page", Part: "part"},
		},
		{
			name:     "id suffix match",
			columns:  []string{"rowid", "matn"},
			expected: ContentColumns{ID: "rowid", Text: "matn"},
		},
		{
			name:     "no id candidate falls back to first column",
			columns:  []string{"seq", "nass"},
			expected: ContentColumns{ID: "seq", Text: "nass"},
		},
		{
			name:     "arabic column names",
			columns:  []string{"معرف", "نص", "صفحة", "جزء"},
			expected: ContentColumns{ID: "معرف", Text: "نص", Page: "صفحة", Part: "جزء"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveContentColumns(tt.columns))
		})
	}
}
