package ingest

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/warraqbooks/warraq/pkg/errcodes"
)

// schemaState is what the compatibility pass learned about the destination.
type schemaState struct {
	hasContentHTML bool
}

// ensureSchema repairs destinations that predate the current pages/chapters
// shape. Every change is conditional, so repeated runs are no-ops:
//
//   - any UNIQUE constraint on pages.page_number is dropped (uniqueness moved
//     to internal_index),
//   - pages.internal_index is added as an auto-incrementing first-column
//     primary key when missing,
//   - chapters.internal_index_start/_end are added when missing.
//
// It also records whether pages.content_html exists; the loader inserts the
// rich rendition only when the column is there and never creates it.
func ensureSchema(ctx context.Context, db *bun.DB) (*schemaState, error) {
	state := &schemaState{}

	if db.Dialect().Name() != dialect.MySQL {
		// Test databases are created by migrations in their final shape;
		// only the content_html probe applies.
		has, err := sqliteHasColumn(ctx, db, "pages", "content_html")
		if err != nil {
			return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "inspect pages: %v", err)
		}
		state.hasContentHTML = has
		return state, nil
	}

	if err := dropPageNumberUniques(ctx, db); err != nil {
		return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "drop page_number uniques: %v", err)
	}

	hasInternalIndex, err := mysqlHasColumn(ctx, db, "pages", "internal_index")
	if err != nil {
		return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "inspect pages: %v", err)
	}
	if !hasInternalIndex {
		_, err = db.ExecContext(ctx,
			"ALTER TABLE `pages` ADD COLUMN `internal_index` INT NOT NULL AUTO_INCREMENT FIRST, ADD PRIMARY KEY (`internal_index`)")
		if err != nil {
			return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "add pages.internal_index: %v", err)
		}
	}

	for _, col := range []string{"internal_index_start", "internal_index_end"} {
		has, err := mysqlHasColumn(ctx, db, "chapters", col)
		if err != nil {
			return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "inspect chapters: %v", err)
		}
		if !has {
			_, err = db.ExecContext(ctx, "ALTER TABLE `chapters` ADD COLUMN `"+col+"` INT NULL")
			if err != nil {
				return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "add chapters.%s: %v", col, err)
			}
		}
	}

	state.hasContentHTML, err = mysqlHasColumn(ctx, db, "pages", "content_html")
	if err != nil {
		return nil, errors.Wrapf(errcodes.SchemaMigrationFailed(), "inspect pages: %v", err)
	}

	return state, nil
}

func dropPageNumberUniques(ctx context.Context, db *bun.DB) error {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT tc.CONSTRAINT_NAME
		FROM information_schema.TABLE_CONSTRAINTS tc
		JOIN information_schema.KEY_COLUMN_USAGE kcu
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
			AND tc.TABLE_NAME = kcu.TABLE_NAME
		WHERE tc.TABLE_SCHEMA = DATABASE()
			AND tc.TABLE_NAME = 'pages'
			AND tc.CONSTRAINT_TYPE = 'UNIQUE'
			AND kcu.COLUMN_NAME = 'page_number'
			AND tc.CONSTRAINT_NAME LIKE '%unique%'
	`)
	if err != nil {
		return errors.WithStack(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return errors.WithStack(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return errors.WithStack(err)
	}

	for _, name := range names {
		if _, err := db.ExecContext(ctx, "ALTER TABLE `pages` DROP INDEX `"+name+"`"); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func mysqlHasColumn(ctx context.Context, db *bun.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

func sqliteHasColumn(ctx context.Context, db *bun.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, errors.WithStack(err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, errors.WithStack(err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, errors.WithStack(err)
	}
	return false, nil
}
