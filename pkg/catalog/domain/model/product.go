package model

// Product is a record of the general goods catalog.
type Product struct {
	Code         Literal `json:"codigo"`
	Category     string  `json:"categoria"`
	FullName     string  `json:"nombre_completo"`
	Size         Literal `json:"tamano"`
	Presentation string  `json:"presentacion"`
	WeightKg     Literal `json:"peso_kg"`
	Status       string  `json:"estado"`
	Current      Price   `json:"precio_actual"`
	Previous     Price   `json:"precio_anterior"`
}

func (p *Product) Identifier() string   { return p.Code.String() }
func (p *Product) CategoryName() string { return p.Category }
func (p *Product) DisplayName() string  { return p.FullName }
func (p *Product) CurrentPrice() Price  { return p.Current }
func (p *Product) PreviousPrice() Price { return p.Previous }

func (p *Product) SetPrices(previous, current Price) {
	p.Previous = previous
	p.Current = current
}
