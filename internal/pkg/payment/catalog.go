package payment

import "strings"

// Price is one sellable product configuration, keyed by the processor's
// price ID.
type Price struct {
	ID   string
	Name string
}

// Catalog is the set of price IDs the service will open checkout sessions
// for. A request referencing anything else fails before any remote call.
type Catalog struct {
	prices map[string]Price
}

// NewCatalog builds a catalog from explicit price entries.
func NewCatalog(prices ...Price) *Catalog {
	c := &Catalog{prices: make(map[string]Price, len(prices))}
	for _, p := range prices {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		p.ID = id
		c.prices[id] = p
	}
	return c
}

// ParseCatalog parses the STRIPE_PRICE_IDS env format: a comma-separated list
// of "price_id=display name" pairs, the name part optional.
func ParseCatalog(raw string) *Catalog {
	var prices []Price
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, name, _ := strings.Cut(entry, "=")
		prices = append(prices, Price{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)})
	}
	return NewCatalog(prices...)
}

// Lookup resolves a price reference. Unknown references return
// ErrPriceNotFound.
func (c *Catalog) Lookup(priceID string) (Price, error) {
	if c != nil {
		if p, ok := c.prices[strings.TrimSpace(priceID)]; ok {
			return p, nil
		}
	}
	return Price{}, ErrPriceNotFound
}

// Len reports how many prices are configured.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.prices)
}
