package domain

// Card is a single record returned by the card catalog. The engine does not
// validate card data; fields mirror what the catalog provides.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TypeLine    string `json:"type_line,omitempty"`
	Set         string `json:"set,omitempty"`
	PriceUSD    string `json:"price_usd,omitempty"`
	ImageSmall  string `json:"image_small,omitempty"`
	ImageNormal string `json:"image_normal,omitempty"`
	CatalogURI  string `json:"catalog_uri,omitempty"`
}
