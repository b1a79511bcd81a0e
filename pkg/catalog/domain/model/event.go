package model

type PriceChanged struct {
	Catalog    Catalog
	Identifier string
	Previous   Price
	Current    Price
}

func (e PriceChanged) Type() string { return "PriceChanged" }

type RoundStarted struct {
	Catalog Catalog
	Records int
}

func (e RoundStarted) Type() string { return "RoundStarted" }
