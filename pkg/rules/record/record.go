// Package record holds the input record evaluated by the rules engine and
// resolves dotted field paths against it.
//
// The set of resolvable paths is fixed. Resolution is a switch over known
// path strings; there is no reflective access, and an unknown path simply
// resolves to nothing.
package record

// Record is a checkout cart flattened into the fields rules may reference.
type Record struct {
	Total           float64    `json:"total" yaml:"total"`
	Subtotal        float64    `json:"subtotal" yaml:"subtotal"`
	Quantity        uint32     `json:"quantity" yaml:"quantity"`
	TotalWeight     float64    `json:"total_weight" yaml:"total_weight"`
	CustomerTags    []string   `json:"customer_tags" yaml:"customer_tags"`
	ShippingAddress Address    `json:"shipping_address" yaml:"shipping_address"`
	LineItems       []LineItem `json:"line_items,omitempty" yaml:"line_items,omitempty"`
}

// Address is a shipping address. Missing components are empty strings.
type Address struct {
	Address1     string `json:"address1" yaml:"address1"`
	Address2     string `json:"address2" yaml:"address2"`
	City         string `json:"city" yaml:"city"`
	Province     string `json:"province" yaml:"province"`
	ProvinceCode string `json:"province_code" yaml:"province_code"`
	Country      string `json:"country" yaml:"country"`
	CountryCode  string `json:"country_code" yaml:"country_code"`
	Zip          string `json:"zip" yaml:"zip"`
}

// LineItem is one cart line. Line items are carried for hosts that
// assemble them but are not addressable by field paths.
type LineItem struct {
	ProductID  string            `json:"product_id" yaml:"product_id"`
	VariantID  string            `json:"variant_id" yaml:"variant_id"`
	SKU        string            `json:"sku" yaml:"sku"`
	Vendor     string            `json:"vendor" yaml:"vendor"`
	Quantity   uint32            `json:"quantity"`
	Price      float64           `json:"price"`
	Properties map[string]string `json:"properties,omitempty"`
}
