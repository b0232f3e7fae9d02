package domain

import (
	"bytes"
	"encoding/json"
)

// Product is a single catalog entry. Optional fields are pointers so that a
// product echoed back by the webhook keeps exactly the fields it was sent with.
// An empty Tags slice is kept distinct from a nil one.
type Product struct {
	Name           string   `json:"name" yaml:"name"`
	Price          float64  `json:"price" yaml:"price"`
	SKU            string   `json:"sku" yaml:"sku"`
	Category       string   `json:"category" yaml:"category"`
	WarrantyMonths *int     `json:"warranty_months,omitempty" yaml:"warranty_months,omitempty"`
	Stock          *int     `json:"stock,omitempty" yaml:"stock,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Extra holds JSON keys the catalog carries beyond the fields above,
	// plus optional fields given as an explicit null. They are written back
	// unchanged.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// productJSON is the wire shape. Tags is a pointer so [] survives encoding.
type productJSON struct {
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	SKU            string    `json:"sku"`
	Category       string    `json:"category"`
	WarrantyMonths *int      `json:"warranty_months,omitempty"`
	Stock          *int      `json:"stock,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
}

var (
	requiredKeys = []string{"name", "price", "sku", "category"}
	optionalKeys = []string{"warranty_months", "stock", "tags"}
)

func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		Name:           p.Name,
		Price:          p.Price,
		SKU:            p.SKU,
		Category:       p.Category,
		WarrantyMonths: p.WarrantyMonths,
		Stock:          p.Stock,
	}
	if p.Tags != nil {
		tags := p.Tags
		out.Tags = &tags
	}
	known, err := json.Marshal(out)
	if err != nil || len(p.Extra) == 0 {
		return known, err
	}

	fields := make(map[string]json.RawMessage, len(p.Extra)+len(requiredKeys)+len(optionalKeys))
	for k, v := range p.Extra {
		fields[k] = v
	}
	var knownFields map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownFields); err != nil {
		return nil, err
	}
	for k, v := range knownFields {
		fields[k] = v
	}
	return json.Marshal(fields)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var in productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = Product{
		Name:           in.Name,
		Price:          in.Price,
		SKU:            in.SKU,
		Category:       in.Category,
		WarrantyMonths: in.WarrantyMonths,
		Stock:          in.Stock,
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}

	for _, k := range requiredKeys {
		delete(fields, k)
	}
	for _, k := range optionalKeys {
		if v, ok := fields[k]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			delete(fields, k)
		}
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}

// ImagePath returns the static asset path for the product image.
func (p Product) ImagePath() string {
	return "/images/" + p.Category + "/" + p.SKU + ".png"
}
