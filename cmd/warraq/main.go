package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/urfave/cli/v2"
	"github.com/warraqbooks/warraq/pkg/config"
	"github.com/warraqbooks/warraq/pkg/database"
	"github.com/warraqbooks/warraq/pkg/errcodes"
	"github.com/warraqbooks/warraq/pkg/ingest"
	"github.com/warraqbooks/warraq/pkg/migrations"
	"github.com/warraqbooks/warraq/pkg/server"
	"github.com/warraqbooks/warraq/pkg/version"
	"github.com/warraqbooks/warraq/pkg/worker"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:    "warraq",
		Usage:   "Shamela book library ingestion service",
		Version: version.Version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the API server and ingest worker",
				Action: func(c *cli.Context) error {
					return serve(c.Context, log)
				},
			},
			{
				Name:      "ingest",
				Usage:     "ingest book database files directly, without the job queue",
				ArgsUsage: "FILE [FILE...]",
				Action: func(c *cli.Context) error {
					return ingestFiles(c.Context, log, c.Args().Slice())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func serve(ctx context.Context, log logger.Logger) error {
	log.Info("starting warraq", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		return errors.WithStack(err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return errors.WithStack(err)
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		return errors.WithStack(err)
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	wrkr := worker.New(cfg, db)

	srv, err := server.New(cfg, db)
	if err != nil {
		return errors.WithStack(err)
	}

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		log.Info("server started", logger.Data{"port": listener.Addr().(*net.TCPAddr).Port})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")

	return nil
}

func ingestFiles(ctx context.Context, log logger.Logger, paths []string) error {
	if len(paths) == 0 {
		return errors.New("at least one source file is required")
	}

	cfg, err := config.New()
	if err != nil {
		return errors.WithStack(err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return errors.WithStack(err)
	}
	defer db.Close()

	svc := ingest.NewService(db, cfg)
	sink := ingest.LoggerSink{Log: log}

	failed := 0
	for _, path := range paths {
		res, err := svc.IngestFile(ctx, path, sink)
		if err != nil {
			if errors.Is(err, errcodes.DestinationUnavailable()) || errors.Is(err, errcodes.SchemaMigrationFailed()) {
				return errors.WithStack(err)
			}
			failed++
			log.Err(err).Error("ingest failed", logger.Data{"path": path})
			continue
		}
		log.Info("ingest finished", logger.Data{
			"path":     path,
			"volumes":  res.Volumes,
			"chapters": res.Chapters,
			"pages":    res.Pages,
			"duration": res.Duration.String(),
		})
	}

	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
