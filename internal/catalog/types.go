package catalog

// Wire types for the catalog API. Only the fields we consume are declared.

type imageURIs struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
}

type cardFace struct {
	ImageURIs *imageURIs `json:"image_uris"`
}

type cardPrices struct {
	USD string `json:"usd"`
}

type wireCard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	TypeLine    string     `json:"type_line"`
	Set         string     `json:"set"`
	ScryfallURI string     `json:"scryfall_uri"`
	ImageURIs   *imageURIs `json:"image_uris"`
	CardFaces   []cardFace `json:"card_faces"`
	Prices      cardPrices `json:"prices"`
}

// images resolves the card's image URLs, falling back to the first face for
// double-faced cards.
func (c *wireCard) images() (small, normal string) {
	if c.ImageURIs != nil {
		return c.ImageURIs.Small, c.ImageURIs.Normal
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].ImageURIs != nil {
		return c.CardFaces[0].ImageURIs.Small, c.CardFaces[0].ImageURIs.Normal
	}
	return "", ""
}

type searchResponse struct {
	TotalCards int        `json:"total_cards"`
	Data       []wireCard `json:"data"`
}

type catalogResponse struct {
	Data []string `json:"data"`
}
