package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/catalog/domain/service"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/export"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/filestore"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/mysqlstore"
	"github.com/andresguaman0621/precios/pkg/catalog/transport"
)

const shutdownTimeout = 10 * time.Second

var catalogFlag = &cli.StringFlag{
	Name:     "catalog",
	Usage:    "productos or mariscos",
	Required: true,
}

func serveCommand(c *config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "overrides PRECIOS_PORT"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.IsSet("port") {
				c.Port = ctx.String("port")
			}
			return serve(ctx.Context, c)
		},
	}
}

func serve(ctx context.Context, c *config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cnt, err := newContainer(ctx, c)
	if err != nil {
		return err
	}
	defer cnt.Close()

	h, err := transport.NewHandler(cnt.productos, cnt.mariscos, cnt.clock)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              c.address(),
		Handler:           transport.Router(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("url", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})
	return g.Wait()
}

func migrateCommand(c *config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply the MySQL schema migrations",
		Action: func(ctx *cli.Context) error {
			if c.StoreDriver == driverFile {
				log.Info("file driver has no schema, nothing to migrate")
				return nil
			}
			db, err := mysqlstore.Open(ctx.Context, c.MysqlDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := mysqlstore.Migrate(db); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}

func importCommand(c *config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "replace a catalog with the records of a JSON seed file",
		Flags: []cli.Flag{
			catalogFlag,
			&cli.StringFlag{Name: "file", Usage: "seed JSON file", Required: true},
		},
		Action: func(ctx *cli.Context) error {
			catalog, err := model.ParseCatalog(ctx.String("catalog"))
			if err != nil {
				return err
			}
			cnt, err := newContainer(ctx.Context, c)
			if err != nil {
				return err
			}
			defer cnt.Close()

			file := ctx.String("file")
			switch catalog {
			case model.Mariscos:
				return importRecords(ctx.Context, catalog, file, cnt.seafoodStore)
			default:
				return importRecords(ctx.Context, catalog, file, cnt.productStore)
			}
		},
	}
}

func importRecords[T model.Record](ctx context.Context, catalog model.Catalog, file string, dst model.Store[T]) error {
	if _, err := os.Stat(file); err != nil {
		return errors.Wrap(err, "seed file")
	}
	records, err := filestore.New[T](file).Load(ctx)
	if err != nil {
		return err
	}
	if err := dst.Save(ctx, records); err != nil {
		return errors.Wrapf(err, "save %s", catalog)
	}
	log.WithFields(log.Fields{"catalog": catalog, "records": len(records), "file": file}).Info("catalog imported")
	return nil
}

func exportCommand(c *config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write a filtered catalog spreadsheet to a directory",
		Flags: []cli.Flag{
			catalogFlag,
			&cli.StringFlag{Name: "categoria"},
			&cli.StringFlag{Name: "codigo", Aliases: []string{"id"}},
			&cli.StringFlag{Name: "nombre"},
			&cli.StringFlag{Name: "out", Value: "."},
		},
		Action: func(ctx *cli.Context) error {
			catalog, err := model.ParseCatalog(ctx.String("catalog"))
			if err != nil {
				return err
			}
			cnt, err := newContainer(ctx.Context, c)
			if err != nil {
				return err
			}
			defer cnt.Close()

			filter := model.Filter{
				Category: ctx.String("categoria"),
				Code:     ctx.String("codigo"),
				Name:     ctx.String("nombre"),
			}
			out := ctx.String("out")
			switch catalog {
			case model.Mariscos:
				filter.Category = ""
				return exportRecords(ctx.Context, cnt.mariscos, export.NewExporter(export.SeafoodLayout(), cnt.clock), filter, out)
			default:
				return exportRecords(ctx.Context, cnt.productos, export.NewExporter(export.ProductLayout(), cnt.clock), filter, out)
			}
		},
	}
}

func exportRecords[T model.Record](
	ctx context.Context,
	svc service.CatalogService[T],
	exporter *export.Exporter[T],
	filter model.Filter,
	out string,
) error {
	records, err := svc.Query(ctx, filter)
	if err != nil {
		return err
	}
	f, err := exporter.Build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(out, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	path := filepath.Join(out, exporter.FileName())
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	log.WithFields(log.Fields{"catalog": svc.Catalog(), "records": len(records), "file": path}).Info("catalog exported")
	return nil
}
