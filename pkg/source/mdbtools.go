package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/warraqbooks/warraq/pkg/errcodes"
)

// mdbSession reads a Jet/ACE file through the mdbtools binaries
// (mdb-tables, mdb-export). Source books are small, so whole tables are
// cached on first read; Describe and Scan share the cache.
type mdbSession struct {
	path     string
	toolsDir string

	mu       sync.Mutex
	tables   []string
	rowCache map[string]*tableData
	closed   bool
}

type tableData struct {
	columns []string
	rows    []Row
}

func (s *mdbSession) tool(name string) string {
	if s.toolsDir == "" {
		return name
	}
	return filepath.Join(s.toolsDir, name)
}

func (s *mdbSession) Tables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("session is closed")
	}
	if s.tables != nil {
		return append([]string(nil), s.tables...), nil
	}

	out, err := s.run(ctx, s.tool("mdb-tables"), "-1", s.path)
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0)
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if strings.HasPrefix(name, "MSys") || strings.HasPrefix(name, "~") {
			continue
		}
		tables = append(tables, name)
	}

	s.tables = tables
	return append([]string(nil), tables...), nil
}

func (s *mdbSession) Describe(ctx context.Context, table string) ([]string, int, error) {
	data, err := s.load(ctx, table)
	if err != nil {
		return nil, 0, err
	}
	return append([]string(nil), data.columns...), len(data.rows), nil
}

func (s *mdbSession) Scan(ctx context.Context, table, orderBy string) ([]Row, error) {
	data, err := s.load(ctx, table)
	if err != nil {
		return nil, err
	}

	rows := append([]Row(nil), data.rows...)
	if orderBy == "" || !contains(data.columns, orderBy) {
		// Requested column is missing; fall back to insertion order.
		return rows, nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return lessValue(rows[i][orderBy], rows[j][orderBy])
	})
	return rows, nil
}

func (s *mdbSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rowCache = nil
	s.tables = nil
	return nil
}

func (s *mdbSession) load(ctx context.Context, table string) (*tableData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("session is closed")
	}
	if data, ok := s.rowCache[table]; ok {
		return data, nil
	}

	out, err := s.run(ctx, s.tool("mdb-export"), "-D", "%Y-%m-%d %H:%M:%S", s.path, table)
	if err != nil {
		return nil, err
	}

	data, err := parseCSV(bytes.NewReader(out))
	if err != nil {
		return nil, errors.Wrapf(errcodes.SourceOpen(s.path, "malformed export"), "table %s: %v", table, err)
	}

	s.rowCache[table] = data
	return data, nil
}

func (s *mdbSession) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		return nil, errors.Wrapf(errcodes.SourceOpen(s.path, "driver error"), "%s: %s", filepath.Base(name), reason)
	}
	return out, nil
}

func parseCSV(r io.Reader) (*tableData, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &tableData{}, nil
		}
		return nil, errors.WithStack(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	data := &tableData{columns: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		data.rows = append(data.rows, row)
	}

	return data, nil
}

func contains(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

// lessValue orders numerically when both sides parse as numbers so that id
// ordering matches the source, not lexicographic order.
func lessValue(a, b string) bool {
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
