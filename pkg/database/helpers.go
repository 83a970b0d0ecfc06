package database

import (
	"database/sql"
	"database/sql/driver"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

func fmtAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func sqlOpenDB(connector driver.Connector) *sql.DB {
	return sql.OpenDB(connector)
}

// IsDuplicateKey reports whether err is a duplicate-key violation. MySQL
// reports error 1062; the sqlite shim used in tests reports a UNIQUE
// constraint message.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
