package model

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrCorruptStore   = errors.New("catalog store content is not well-formed")
	ErrUnknownCatalog = errors.New("unknown catalog")
)

type Catalog string

const (
	Productos Catalog = "productos"
	Mariscos  Catalog = "mariscos"
)

func ParseCatalog(name string) (Catalog, error) {
	switch c := Catalog(name); c {
	case Productos, Mariscos:
		return c, nil
	}
	return "", errors.Wrapf(ErrUnknownCatalog, "%q", name)
}

type Record interface {
	Identifier() string
	CategoryName() string
	DisplayName() string
	CurrentPrice() Price
	PreviousPrice() Price
	SetPrices(previous, current Price)
}

// Store loads and replaces a whole collection at once.
type Store[T Record] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
}
