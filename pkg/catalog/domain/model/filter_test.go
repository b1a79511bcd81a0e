package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func products() []*Product {
	return []*Product{
		{Code: NewLiteral("AC-01"), Category: "Aceites", FullName: "Aceite de girasol 1L"},
		{Code: NewLiteral("AC-02"), Category: "ACEITES", FullName: "Aceite de oliva 500ml"},
		{Code: NewLiteral("BE-01"), Category: "Bebidas", FullName: "Agua sin gas"},
		{Code: NewLiteral("ac-03"), Category: "Aceites", FullName: "Aceite de maíz"},
	}
}

func codes(records []*Product) []string {
	var result []string
	for _, r := range records {
		result = append(result, r.Identifier())
	}
	return result
}

func TestApply(t *testing.T) {
	t.Run("Empty filter keeps everything in order", func(t *testing.T) {
		assert.Equal(t, []string{"AC-01", "AC-02", "BE-01", "ac-03"}, codes(Apply(products(), Filter{})))
	})

	t.Run("Category is case-insensitive exact", func(t *testing.T) {
		assert.Equal(t, []string{"AC-01", "AC-02", "ac-03"}, codes(Apply(products(), Filter{Category: "aceites"})))
		assert.Empty(t, Apply(products(), Filter{Category: "aceite"}))
	})

	t.Run("Code is a case-sensitive prefix", func(t *testing.T) {
		assert.Equal(t, []string{"AC-01", "AC-02"}, codes(Apply(products(), Filter{Code: "AC"})))
	})

	t.Run("Name is a case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, []string{"AC-02"}, codes(Apply(products(), Filter{Name: "OLIVA"})))
		assert.Equal(t, []string{"ac-03"}, codes(Apply(products(), Filter{Name: "MAÍZ"})))
	})

	t.Run("Filters compose with AND", func(t *testing.T) {
		assert.Equal(t, []string{"AC-01"}, codes(Apply(products(), Filter{Category: "ACEITES", Name: "girasol"})))
		assert.Empty(t, Apply(products(), Filter{Category: "Bebidas", Name: "aceite"}))
	})
}

func TestSeafoodHasNoCategory(t *testing.T) {
	records := []*Seafood{{ID: NewLiteral("1"), ProductName: "Camarón"}}
	assert.Empty(t, Apply(records, Filter{Category: "x"}))
	assert.Len(t, Apply(records, Filter{Name: "camarón"}), 1)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"ACEITES", "Aceites", "Bebidas"}, Categories(products()))
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog("mariscos")
	assert.NoError(t, err)
	assert.Equal(t, Mariscos, c)

	_, err = ParseCatalog("frutas")
	assert.ErrorIs(t, err, ErrUnknownCatalog)
}
