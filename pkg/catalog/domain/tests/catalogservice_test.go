package tests

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/catalog/domain/service"
	"github.com/andresguaman0621/precios/pkg/catalog/infrastructure/filestore"
)

func setup(t *testing.T, policy service.BatchPolicy, seed ...*model.Product) (service.CatalogService[*model.Product], *mockStore, *mockEventDispatcher) {
	t.Helper()
	store := &mockStore{records: seed}
	dispatcher := &mockEventDispatcher{}
	catalogService := service.NewCatalogService[*model.Product](model.Productos, store, policy, dispatcher)
	return catalogService, store, dispatcher
}

func product(code, category, name, current, previous string) *model.Product {
	return &model.Product{
		Code:     model.NewLiteral(code),
		Category: category,
		FullName: name,
		Current:  model.ParsePrice(current),
		Previous: model.ParsePrice(previous),
	}
}

func TestUpdatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		catalogService, store, dispatcher := setup(t, service.BatchPolicy{}, product("A1", "ACEITES", "Aceite", "10", ""))

		err := catalogService.UpdatePrice(ctx, "A1", model.ParsePrice("12"))

		require.NoError(t, err)
		saved := store.find("A1")
		assert.Equal(t, "10", saved.Previous.String())
		assert.Equal(t, "12", saved.Current.String())
		assert.Equal(t, 1, store.saves)

		require.Len(t, dispatcher.events, 1)
		event := dispatcher.events[0].(model.PriceChanged)
		assert.Equal(t, "A1", event.Identifier)
		assert.Equal(t, "10", event.Previous.String())
		assert.Equal(t, "12", event.Current.String())
	})

	t.Run("Shifts even when unchanged", func(t *testing.T) {
		catalogService, store, _ := setup(t, service.BatchPolicy{}, product("A1", "", "", "10", "8"))

		require.NoError(t, catalogService.UpdatePrice(ctx, "A1", model.ParsePrice("10")))
		assert.Equal(t, "10", store.find("A1").Previous.String())
	})

	t.Run("Only first match", func(t *testing.T) {
		catalogService, store, _ := setup(t, service.BatchPolicy{},
			product("A1", "", "first", "1", ""),
			product("A1", "", "second", "2", ""),
		)

		require.NoError(t, catalogService.UpdatePrice(ctx, "A1", model.ParsePrice("5")))
		assert.Equal(t, "5", store.records[0].Current.String())
		assert.Equal(t, "2", store.records[1].Current.String())
	})

	t.Run("Unknown identifier is a no-op", func(t *testing.T) {
		catalogService, store, dispatcher := setup(t, service.BatchPolicy{}, product("A1", "", "", "10", ""))

		err := catalogService.UpdatePrice(ctx, "ZZ", model.ParsePrice("12"))

		require.NoError(t, err)
		assert.Equal(t, "10", store.find("A1").Current.String())
		assert.Zero(t, store.saves)
		assert.Empty(t, dispatcher.events)
	})

	t.Run("Load failure", func(t *testing.T) {
		catalogService, store, _ := setup(t, service.BatchPolicy{})
		store.loadErr = model.ErrCorruptStore

		err := catalogService.UpdatePrice(ctx, "A1", model.ParsePrice("12"))
		assert.ErrorIs(t, err, model.ErrCorruptStore)
	})
}

func TestUpdatePrices(t *testing.T) {
	ctx := context.Background()
	updates := []service.PriceUpdate{
		{Identifier: "A1", Price: model.ParsePrice("10")},
		{Identifier: "B2", Price: model.ParsePrice("7.50")},
		{Identifier: "missing", Price: model.ParsePrice("99")},
	}

	t.Run("Keeps history on resubmission", func(t *testing.T) {
		catalogService, store, dispatcher := setup(t, service.BatchPolicy{AlwaysShift: false},
			product("A1", "", "", "10.0", "9"),
			product("B2", "", "", "7", ""),
		)

		require.NoError(t, catalogService.UpdatePrices(ctx, updates))

		a1 := store.find("A1")
		assert.Equal(t, "9", a1.Previous.String())
		assert.Equal(t, "10.0", a1.Current.String())

		b2 := store.find("B2")
		assert.Equal(t, "7", b2.Previous.String())
		assert.Equal(t, "7.50", b2.Current.String())

		assert.Len(t, store.records, 2)
		assert.Equal(t, 1, store.saves)
		require.Len(t, dispatcher.events, 1)
	})

	t.Run("Always shift", func(t *testing.T) {
		catalogService, store, dispatcher := setup(t, service.BatchPolicy{AlwaysShift: true},
			product("A1", "", "", "10", "9"),
			product("B2", "", "", "7", ""),
		)

		require.NoError(t, catalogService.UpdatePrices(ctx, updates))

		a1 := store.find("A1")
		assert.Equal(t, "10", a1.Previous.String())
		assert.Equal(t, "10", a1.Current.String())
		assert.Len(t, dispatcher.events, 2)
	})

	t.Run("Only unknown identifiers", func(t *testing.T) {
		catalogService, store, _ := setup(t, service.BatchPolicy{AlwaysShift: true}, product("A1", "", "", "10", "9"))

		err := catalogService.UpdatePrices(ctx, []service.PriceUpdate{{Identifier: "nope", Price: model.ParsePrice("1")}})

		require.NoError(t, err)
		assert.Zero(t, store.saves)
		assert.Equal(t, "10", store.find("A1").Current.String())
		assert.Equal(t, "9", store.find("A1").Previous.String())
	})
}

func TestStartNewRound(t *testing.T) {
	ctx := context.Background()
	catalogService, store, dispatcher := setup(t, service.BatchPolicy{},
		product("A1", "", "", "10", "9"),
		product("B2", "", "", "", "3"),
	)

	require.NoError(t, catalogService.StartNewRound(ctx))

	assert.Equal(t, "10", store.find("A1").Previous.String())
	assert.True(t, store.find("A1").Current.IsAbsent())
	assert.True(t, store.find("B2").Previous.IsAbsent())
	assert.True(t, store.find("B2").Current.IsAbsent())

	require.Len(t, dispatcher.events, 1)
	event := dispatcher.events[0].(model.RoundStarted)
	assert.Equal(t, 2, event.Records)

	t.Run("Second round clears history", func(t *testing.T) {
		require.NoError(t, catalogService.StartNewRound(ctx))
		for _, r := range store.records {
			assert.True(t, r.Current.IsAbsent())
			assert.True(t, r.Previous.IsAbsent())
		}
	})
}

func TestQuery(t *testing.T) {
	catalogService, _, _ := setup(t, service.BatchPolicy{},
		product("A1", "Aceites", "Aceite de Girasol", "", ""),
		product("A2", "ACEITES", "Aceite de Oliva", "", ""),
		product("B1", "Bebidas", "Agua con gas", "", ""),
	)

	records, err := catalogService.Query(context.Background(), model.Filter{Category: "aceites", Name: "OLIVA"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A2", records[0].Identifier())
}

func TestDispatchFailureDoesNotFailUpdate(t *testing.T) {
	catalogService, store, dispatcher := setup(t, service.BatchPolicy{}, product("A1", "", "", "1", ""))
	dispatcher.err = errors.New("broker down")

	require.NoError(t, catalogService.UpdatePrice(context.Background(), "A1", model.ParsePrice("2")))
	assert.Equal(t, "2", store.find("A1").Current.String())
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	const workers = 24

	store := filestore.New[*model.Product](filepath.Join(t.TempDir(), "productos_data.json"))
	seed := make([]*model.Product, 0, workers)
	for i := 0; i < workers; i++ {
		seed = append(seed, product(fmt.Sprintf("P%02d", i), "", "", "1", ""))
	}
	require.NoError(t, store.Save(ctx, seed))

	catalogService := service.NewCatalogService[*model.Product](model.Productos, store, service.BatchPolicy{}, &mockEventDispatcher{})

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- catalogService.UpdatePrice(ctx, fmt.Sprintf("P%02d", i), model.ParsePrice(fmt.Sprint(100+i)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, workers)
	for i, r := range records {
		assert.Equal(t, fmt.Sprint(100+i), r.Current.String(), "record %s", r.Identifier())
		assert.Equal(t, "1", r.Previous.String(), "record %s", r.Identifier())
	}
}

type mockStore struct {
	records []*model.Product
	saves   int
	loadErr error
}

// Load hands out copies like a real store decoding from disk.
func (m *mockStore) Load(_ context.Context) ([]*model.Product, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	result := make([]*model.Product, 0, len(m.records))
	for _, r := range m.records {
		clone := *r
		result = append(result, &clone)
	}
	return result, nil
}

func (m *mockStore) Save(_ context.Context, records []*model.Product) error {
	m.records = records
	m.saves++
	return nil
}

func (m *mockStore) find(code string) *model.Product {
	for _, r := range m.records {
		if r.Code.String() == code {
			return r
		}
	}
	return nil
}

type mockEventDispatcher struct {
	events []service.Event
	err    error
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.events = append(m.events, event)
	return m.err
}
