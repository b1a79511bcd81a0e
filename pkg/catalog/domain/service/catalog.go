package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
)

type Event interface{ Type() string }
type EventDispatcher interface{ Dispatch(event Event) error }

type PriceUpdate struct {
	Identifier string
	Price      model.Price
}

// BatchPolicy decides whether a batch entry that resubmits the current price
// still moves it into the previous price.
type BatchPolicy struct {
	AlwaysShift bool
}

type CatalogService[T model.Record] interface {
	Catalog() model.Catalog
	Query(ctx context.Context, filter model.Filter) ([]T, error)
	UpdatePrice(ctx context.Context, identifier string, price model.Price) error
	UpdatePrices(ctx context.Context, updates []PriceUpdate) error
	StartNewRound(ctx context.Context) error
}

func NewCatalogService[T model.Record](
	catalog model.Catalog,
	store model.Store[T],
	policy BatchPolicy,
	dispatcher EventDispatcher,
) CatalogService[T] {
	return &catalogService[T]{
		catalog:    catalog,
		store:      store,
		policy:     policy,
		dispatcher: dispatcher,
	}
}

type catalogService[T model.Record] struct {
	catalog    model.Catalog
	store      model.Store[T]
	policy     BatchPolicy
	dispatcher EventDispatcher

	// serializes load-modify-save cycles within the process
	mu sync.Mutex
}

func (s *catalogService[T]) Catalog() model.Catalog { return s.catalog }

func (s *catalogService[T]) Query(ctx context.Context, filter model.Filter) ([]T, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.catalog)
	}
	return model.Apply(records, filter), nil
}

func (s *catalogService[T]) UpdatePrice(ctx context.Context, identifier string, price model.Price) error {
	return s.mutate(ctx, func(records []T) []Event {
		if e, ok := s.shift(records, PriceUpdate{Identifier: identifier, Price: price}, true); ok {
			return []Event{e}
		}
		return nil
	})
}

func (s *catalogService[T]) UpdatePrices(ctx context.Context, updates []PriceUpdate) error {
	return s.mutate(ctx, func(records []T) []Event {
		var events []Event
		for _, u := range updates {
			if e, ok := s.shift(records, u, s.policy.AlwaysShift); ok {
				events = append(events, e)
			}
		}
		return events
	})
}

func (s *catalogService[T]) StartNewRound(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "load %s", s.catalog)
	}
	for _, r := range records {
		r.SetPrices(r.CurrentPrice(), model.Price{})
	}
	if err := s.store.Save(ctx, records); err != nil {
		return errors.Wrapf(err, "save %s", s.catalog)
	}

	s.dispatchEvents([]Event{model.RoundStarted{Catalog: s.catalog, Records: len(records)}})
	return nil
}

// shift applies a price to the first record with the identifier.
func (s *catalogService[T]) shift(records []T, u PriceUpdate, always bool) (Event, bool) {
	for _, r := range records {
		if r.Identifier() != u.Identifier {
			continue
		}
		current := r.CurrentPrice()
		if !always && current.Equal(u.Price) {
			return nil, false
		}
		r.SetPrices(current, u.Price)
		return model.PriceChanged{
			Catalog:    s.catalog,
			Identifier: u.Identifier,
			Previous:   current,
			Current:    u.Price,
		}, true
	}
	return nil, false
}

// mutate saves only when the action changed at least one record.
func (s *catalogService[T]) mutate(ctx context.Context, action func(records []T) []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "load %s", s.catalog)
	}

	events := action(records)
	if len(events) == 0 {
		return nil
	}

	if err := s.store.Save(ctx, records); err != nil {
		return errors.Wrapf(err, "save %s", s.catalog)
	}

	s.dispatchEvents(events)
	return nil
}

func (s *catalogService[T]) dispatchEvents(events []Event) {
	for _, event := range events {
		if err := s.dispatcher.Dispatch(event); err != nil {
			log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
		}
	}
}
