package model

// Seafood is a record of the seafood catalog. It has no category.
type Seafood struct {
	ID          Literal `json:"id"`
	ProductName string  `json:"producto"`
	Weight      Literal `json:"peso"`
	Current     Price   `json:"precio_actual"`
	Previous    Price   `json:"precio_anterior"`
}

func (s *Seafood) Identifier() string   { return s.ID.String() }
func (s *Seafood) CategoryName() string { return "" }
func (s *Seafood) DisplayName() string  { return s.ProductName }
func (s *Seafood) CurrentPrice() Price  { return s.Current }
func (s *Seafood) PreviousPrice() Price { return s.Previous }

func (s *Seafood) SetPrices(previous, current Price) {
	s.Previous = previous
	s.Current = current
}
