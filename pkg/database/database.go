package database

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/warraqbooks/warraq/pkg/config"
	"github.com/warraqbooks/warraq/pkg/errcodes"
)

type key int

const ctxKey key = 0

func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled, ok := ctx.Value(ctxKey).(bool)
	if !ok || !enabled {
		return
	}

	qh.log.Debug(event.Query)
}

// DSN builds the destination connection string. The destination stores
// Arabic text with diacritics, so the connection has to be utf8mb4 end to
// end. An empty password is omitted from the connect entirely.
func DSN(dest config.Destination) *mysql.Config {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmtAddr(dest.Host, dest.Port)
	mc.DBName = dest.Database
	mc.User = dest.User
	mc.Passwd = dest.Password
	mc.Collation = "utf8mb4_unicode_ci"
	mc.ParseTime = true
	mc.Timeout = 10 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc
}

// New opens the destination database and verifies connectivity. Connect
// failures surface as the destination_unavailable kind so a batch is aborted
// before any file is attempted.
func New(cfg *config.Config) (*bun.DB, error) {
	connector, err := mysql.NewConnector(DSN(cfg.Destination))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sqldb := sqlOpenDB(connector)
	db := bun.NewDB(sqldb, mysqldialect.New())

	// print out all queries in debug mode
	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	err = retry.Do(
		func() error {
			return db.Ping()
		},
		retry.Attempts(uint(cfg.DatabaseConnectRetryCount)),
		retry.Delay(cfg.DatabaseConnectRetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.Wrapf(errcodes.DestinationUnavailable(), "connect %s: %v", DSN(cfg.Destination).Addr, err)
	}

	return db, nil
}
