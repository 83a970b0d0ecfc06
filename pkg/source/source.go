// Package source provides read-only access to Shamela book databases. The
// files are Jet/ACE (Access) databases carrying either the .accdb or the
// .bok extension; the extension is cosmetic and both forms are opened the
// same way.
package source

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"reflect"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/warraqbooks/warraq/pkg/errcodes"
)

// Jet/ACE files open with a 00 01 00 00 header followed by an engine
// signature string within the first page.
const minFileSize = 50 * 1024

var (
	rawHeader  = []byte{0x00, 0x01, 0x00, 0x00}
	signatures = [][]byte{
		[]byte("Standard Jet DB"),
		[]byte("Standard ACE DB"),
		[]byte("Microsoft Jet DB"),
	}
)

// Session is cursor-style access to one open source file. Implementations
// must tolerate arbitrary table and column names; schema interpretation is
// the discoverer's job, not the driver's.
type Session interface {
	// Tables lists user tables in file order, excluding system-catalog
	// tables (MSys* and ~* prefixes).
	Tables(ctx context.Context) ([]string, error)
	// Describe reports the column names and row count of a table.
	Describe(ctx context.Context, table string) (columns []string, rowCount int, err error)
	// Scan reads all rows of a table. When orderBy names an existing column
	// the rows come back sorted by it (numeric-aware); otherwise they stay
	// in insertion order.
	Scan(ctx context.Context, table, orderBy string) ([]Row, error)
	Close() error
}

type Options struct {
	// MDBToolsDir is the directory holding the mdbtools binaries. Empty
	// means resolve via PATH.
	MDBToolsDir string
	Log         logger.Logger
}

// Open validates path as a Jet/ACE database and returns a session over it.
// Validation failures and driver errors surface as the source_open_error
// kind; callers never see driver-specific types.
func Open(ctx context.Context, path string, opts Options) (Session, error) {
	if err := ValidateFile(path); err != nil {
		return nil, err
	}

	log := opts.Log
	if reflect.ValueOf(log).IsZero() {
		log = logger.New()
	}

	// Advisory only: the signature check above is authoritative.
	if mtype, err := mimetype.DetectFile(path); err == nil && !mtype.Is("application/x-msaccess") {
		log.Warn("unexpected mime type for source file", logger.Data{"path": path, "mimetype": mtype.String()})
	}

	sess := &mdbSession{
		path:     path,
		toolsDir: opts.MDBToolsDir,
		rowCache: map[string]*tableData{},
	}

	// Fail fast if the driver can't read the file at all.
	if _, err := sess.Tables(ctx); err != nil {
		return nil, err
	}

	return sess, nil
}

// ValidateFile checks that path exists, is large enough to be a real book
// database, and starts with a recognised Jet/ACE header.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.WithStack(errcodes.SourceOpen(path, "file does not exist"))
		}
		return errors.WithStack(errcodes.SourceOpen(path, err.Error()))
	}
	if info.IsDir() {
		return errors.WithStack(errcodes.SourceOpen(path, "path is a directory"))
	}
	if info.Size() < minFileSize {
		return errors.WithStack(errcodes.SourceOpen(path, "file is too small to be a book database"))
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(errcodes.SourceOpen(path, err.Error()))
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil {
		return errors.WithStack(errcodes.SourceOpen(path, err.Error()))
	}
	header = header[:n]

	if bytes.HasPrefix(header, rawHeader) {
		return nil
	}
	for _, sig := range signatures {
		if bytes.Contains(header, sig) {
			return nil
		}
	}

	return errors.WithStack(errcodes.SourceOpen(path, "no Jet/ACE signature"))
}
