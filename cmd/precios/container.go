package main

import (
	"context"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/catalog/domain/service"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/event"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/filestore"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/mysqlstore"
	"github.com/andresguaman0621/precios/pkg/common/clock"
)

type container struct {
	clock clock.Clock

	productStore model.Store[*model.Product]
	seafoodStore model.Store[*model.Seafood]

	productos service.CatalogService[*model.Product]
	mariscos  service.CatalogService[*model.Seafood]

	db *sqlx.DB
}

func newContainer(ctx context.Context, c *config) (*container, error) {
	cnt := &container{clock: clock.NewRealClock()}

	switch c.StoreDriver {
	case driverMySQL:
		db, err := mysqlstore.Open(ctx, c.MysqlDSN)
		if err != nil {
			return nil, err
		}
		if err := mysqlstore.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		cnt.db = db
		cnt.productStore = mysqlstore.NewProductStore(db)
		cnt.seafoodStore = mysqlstore.NewSeafoodStore(db)
	default:
		cnt.productStore = filestore.New[*model.Product](filepath.Join(c.DataDir, c.ProductsFile))
		cnt.seafoodStore = filestore.New[*model.Seafood](filepath.Join(c.DataDir, c.SeafoodFile))
	}

	dispatcher := event.NewLogDispatcher(log.StandardLogger())
	cnt.productos = service.NewCatalogService[*model.Product](
		model.Productos,
		cnt.productStore,
		service.BatchPolicy{AlwaysShift: c.ProductsAlwaysShift},
		dispatcher,
	)
	cnt.mariscos = service.NewCatalogService[*model.Seafood](
		model.Mariscos,
		cnt.seafoodStore,
		service.BatchPolicy{AlwaysShift: c.SeafoodAlwaysShift},
		dispatcher,
	)

	log.WithFields(log.Fields{
		"driver":              c.StoreDriver,
		"productsAlwaysShift": c.ProductsAlwaysShift,
		"seafoodAlwaysShift":  c.SeafoodAlwaysShift,
	}).Info("catalogs ready")

	return cnt, nil
}

func (c *container) Close() error {
	if c.db == nil {
		return nil
	}
	return errors.Wrap(c.db.Close(), "close database")
}
